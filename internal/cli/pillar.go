package cli

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pillarlog/pillarlog/internal/models"
)

type PillarAddCmd struct {
	Name  string `arg:"" help:"Pillar name (e.g. Health)."`
	Color string `help:"Display color (hex or name)."`
	Order int    `help:"Display position; lower sorts first."`
}

func (c *PillarAddCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	pillar := models.Pillar{
		ID:        uuid.NewString(),
		Name:      c.Name,
		Color:     c.Color,
		Order:     c.Order,
		CreatedAt: time.Now(),
	}
	if err := pillar.Validate(); err != nil {
		return err
	}
	if err := ctx.Store.AddPillar(pillar); err != nil {
		return err
	}

	fmt.Printf("Added pillar %q (%s)\n", pillar.Name, pillar.ID)
	return nil
}

type PillarListCmd struct{}

func (c *PillarListCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	pillars, err := ctx.Store.GetAllPillars()
	if err != nil {
		return err
	}
	if len(pillars) == 0 {
		fmt.Println("No pillars yet. Add one: pillarlog pillar add \"Health\"")
		return nil
	}

	for _, p := range pillars {
		fmt.Printf("%-36s  %s\n", p.ID, p.Name)
	}
	return nil
}

type PillarRemoveCmd struct {
	ID string `arg:"" help:"Pillar id."`
}

func (c *PillarRemoveCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	if err := ctx.Store.DeletePillar(c.ID); err != nil {
		return err
	}

	fmt.Println("Pillar removed. Existing history keeps its entries; future plans stop including it.")
	return nil
}
