package class

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/filmsfather/CampusWoodieVer2/core"
)

// Class is a group of learners that can receive assignments together.
type Class struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type NewClass struct {
	Name string `json:"name" validate:"notblank,max=100"`
}

func (nc *NewClass) Validate(ctx context.Context, validate *validator.Validate, svc Service) error {
	nc.Name = core.CleanString(nc.Name)
	if err := validate.Struct(nc); err != nil {
		return err
	}
	return svc.CheckNameUniqueness(ctx, nc.Name)
}
