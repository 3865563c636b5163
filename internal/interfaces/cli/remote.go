package cli

import (
	"context"
	stderrors "errors"

	"github.com/turtacn/Trilemma-Dashboard/internal/application/dashboard"
	"github.com/turtacn/Trilemma-Dashboard/internal/domain/indicator"
	"github.com/turtacn/Trilemma-Dashboard/pkg/client"
	"github.com/turtacn/Trilemma-Dashboard/pkg/errors"
)

// remoteService serves dashboard.Service from a running dashboard.
type remoteService struct {
	client *client.Client
}

func newRemoteService(c *client.Client) dashboard.Service {
	return &remoteService{client: c}
}

func (s *remoteService) Options(ctx context.Context) (*dashboard.Options, error) {
	o, err := s.client.Options(ctx)
	if err != nil {
		return nil, fromAPIError(err)
	}
	return &dashboard.Options{
		States:  o.States,
		Years:   o.Years,
		Default: indicator.Selection{State: o.Default.State, Year: o.Default.Year},
	}, nil
}

func (s *remoteService) ComputeView(ctx context.Context, sel indicator.Selection) (*dashboard.ViewModel, error) {
	v, err := s.client.View(ctx, sel.State, sel.Year)
	if err != nil {
		return nil, fromAPIError(err)
	}
	vm := &dashboard.ViewModel{
		Selection: indicator.Selection{State: v.Selection.State, Year: v.Selection.Year},
		Title:     v.Title,
		Generic:   dashboard.Point{X: v.Generic.X, Y: v.Generic.Y, Z: v.Generic.Z},
		Ideal:     dashboard.Point{X: v.Ideal.X, Y: v.Ideal.Y, Z: v.Ideal.Z},
		Groups:    make([]dashboard.ReadoutGroup, 0, len(v.Groups)),
	}
	for _, g := range v.Groups {
		group := dashboard.ReadoutGroup{Heading: g.Heading, Readouts: make([]dashboard.Readout, 0, len(g.Readouts))}
		for _, r := range g.Readouts {
			group.Readouts = append(group.Readouts, dashboard.Readout{
				Key:       r.Key,
				Label:     r.Label,
				Value:     r.Value,
				Degrees:   r.Degrees,
				Error:     r.Error,
				ErrorCode: r.ErrorCode,
			})
		}
		vm.Groups = append(vm.Groups, group)
	}
	return vm, nil
}

// fromAPIError restores the server's error code so that callers can test it
// with errors.IsCode exactly as for the local service.
func fromAPIError(err error) error {
	var apiErr *client.APIError
	if !stderrors.As(err, &apiErr) || apiErr.Code == "" {
		return err
	}
	return errors.New(errors.ErrorCode(apiErr.Code), apiErr.Message).
		WithDetail(apiErr.Detail).
		WithCause(apiErr)
}

//Personal.AI order the ending
