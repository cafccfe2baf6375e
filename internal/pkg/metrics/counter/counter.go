package counter

import (
	"context"
	"strings"

	"github.com/nghiaphan04/quynh-anh-bio/app/repository"
	"github.com/nghiaphan04/quynh-anh-bio/internal/pkg/cache"
)

const profileViewsKey = "profile:counters:views"

// AddProfileView increments the pending page-view counter in Redis. Views are
// batched there and only hit MySQL on Flush.
func AddProfileView() error {
	ctx := context.Background()
	return cache.GetClient().Incr(ctx, profileViewsKey).Err()
}

// PendingViews returns the number of views not yet flushed to the database.
func PendingViews() (int64, error) {
	ctx := context.Background()
	n, err := cache.GetClient().Get(ctx, profileViewsKey).Int64()
	if err != nil {
		if isNilErr(err) {
			return 0, nil
		}
		return 0, err
	}
	return n, nil
}

// Flush drains the pending counter and applies it to the profiles table.
// GETDEL keeps in-flight increments: anything arriving after the drain lands
// in the next flush.
func Flush(repo repository.ProfileRepository) error {
	ctx := context.Background()
	n, err := cache.GetClient().GetDel(ctx, profileViewsKey).Int64()
	if err != nil {
		if isNilErr(err) {
			return nil
		}
		return err
	}
	if n == 0 {
		return nil
	}
	return repo.IncrementViewCount(n)
}

func isNilErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "redis: nil")
}
