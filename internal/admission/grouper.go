package admission

import (
	"context"
	"sort"
	"time"

	"github.com/samber/lo"
)

// Workload is one queueable unit read from the admission controller's queue.
// Admitted workloads have already been released for scheduling; everything
// else is waiting.
type Workload struct {
	Name             string            `json:"name"`
	Namespace        string            `json:"namespace"`
	QueueName        string            `json:"-"`
	Priority         int64             `json:"priority"`
	CreatedAt        time.Time         `json:"createdAt"`
	ResourceRequests map[string]string `json:"resourceRequests"`
	UserName         string            `json:"userName"`
	TeamName         string            `json:"teamName"`
	Admitted         bool              `json:"-"`
}

// GroupByQueue filters out admitted workloads and groups the rest by queue
// name, each group ordered by priority descending. Equal priorities fall back
// to creation time ascending so the longest-waiting workload surfaces first.
// Queues with nothing pending do not appear at all.
func GroupByQueue(workloads []Workload) map[string][]Workload {
	pending := lo.Filter(workloads, func(w Workload, _ int) bool {
		return !w.Admitted
	})

	groups := lo.GroupBy(pending, func(w Workload) string {
		return w.QueueName
	})
	for _, group := range groups {
		sort.SliceStable(group, func(i, j int) bool {
			if group[i].Priority == group[j].Priority {
				return group[i].CreatedAt.Before(group[j].CreatedAt)
			}
			return group[i].Priority > group[j].Priority
		})
	}
	return groups
}

// Source supplies the queue snapshot. Implemented by the cluster client.
type Source interface {
	Workloads(ctx context.Context) ([]Workload, error)
}

// Service is the admission-view facade the HTTP layer talks to.
type Service struct {
	source Source
}

func NewService(source Source) *Service {
	return &Service{source: source}
}

// Pending returns the per-queue view of workloads still waiting for
// admission, freshly fetched.
func (s *Service) Pending(ctx context.Context) (map[string][]Workload, error) {
	workloads, err := s.source.Workloads(ctx)
	if err != nil {
		return nil, err
	}
	return GroupByQueue(workloads), nil
}
