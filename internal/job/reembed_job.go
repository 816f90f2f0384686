package job

import (
	"context"

	"github.com/talentvec/talentvec/internal/service"
)

// ReembedJob periodically refreshes chunk vectors that are missing or
// belong to a retired embedding model.
type ReembedJob struct {
	reembed *service.ReembedService
}

func NewReembedJob(reembed *service.ReembedService) *ReembedJob {
	return &ReembedJob{reembed: reembed}
}

func (j *ReembedJob) Name() string {
	return "chunk_reembed"
}

func (j *ReembedJob) Run(ctx context.Context) error {
	if j.reembed == nil {
		return nil
	}
	_, err := j.reembed.ProcessStale(ctx)
	return err
}
