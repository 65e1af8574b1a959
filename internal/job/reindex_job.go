package job

import (
	"context"

	"github.com/versedb/versed/internal/service"
)

// ReindexJob runs the offline vectorization pass on a schedule so chunks for
// newly scraped lyrics make it into the index without operator action.
type ReindexJob struct {
	index *service.IndexService
}

func NewReindexJob(index *service.IndexService) *ReindexJob {
	return &ReindexJob{index: index}
}

func (j *ReindexJob) Name() string {
	return "lyrics_reindex"
}

func (j *ReindexJob) Run(ctx context.Context) error {
	if j.index == nil {
		return nil
	}
	_, err := j.index.Reindex(ctx)
	return err
}
