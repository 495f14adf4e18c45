package reporting

import "context"

// collapse runs fn once per key among concurrent callers.
func (s *Service) collapse(ctx context.Context, key string, fn func(context.Context) (Artifact, error)) (Artifact, bool, error) {
	resultChan := s.group.DoChan(key, func() (interface{}, error) {
		return fn(ctx)
	})
	select {
	case <-ctx.Done():
		return Artifact{}, false, ctx.Err()
	case res := <-resultChan:
		if res.Err != nil {
			return Artifact{}, res.Shared, res.Err
		}
		return res.Val.(Artifact), res.Shared, nil
	}
}
