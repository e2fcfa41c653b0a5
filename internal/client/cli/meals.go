package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/dailydiet/internal/client/api"
)

const eatenAtLayout = "2006-01-02T15:04"

// parseMealArgs reads <name> <yyyy-mm-ddThh:mm> <on|off> [description...].
// The time is taken in loc.
func parseMealArgs(args []string, loc *time.Location) (api.MealInput, error) {
	if len(args) < 3 {
		return api.MealInput{}, fmt.Errorf("%w: add <name> <yyyy-mm-ddThh:mm> <on|off> [description]", ErrUsage)
	}

	eatenAt, err := time.ParseInLocation(eatenAtLayout, args[1], loc)
	if err != nil {
		return api.MealInput{}, fmt.Errorf("%w: time must look like 2024-06-01T12:30", ErrUsage)
	}

	var onDiet bool
	switch strings.ToLower(args[2]) {
	case "on", "yes", "true":
		onDiet = true
	case "off", "no", "false":
	default:
		return api.MealInput{}, fmt.Errorf("%w: diet flag must be on or off", ErrUsage)
	}

	return api.MealInput{
		Name:        args[0],
		Description: strings.Join(args[3:], " "),
		EatenAt:     eatenAt,
		IsOnDiet:    onDiet,
	}, nil
}

func (a *App) addMeal(ctx context.Context, args []string) error {
	in, err := parseMealArgs(args, time.Local)
	if err != nil {
		return err
	}

	m, err := a.backend.CreateMeal(ctx, in)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Added %s (%s)\n", m.Name, m.ID)
	return nil
}

func (a *App) deleteMeal(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: delete <id>", ErrUsage)
	}

	if err := a.backend.DeleteMeal(ctx, args[0]); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Deleted.")
	return nil
}

func dietLabel(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

func (a *App) listMeals(ctx context.Context) error {
	meals, err := a.backend.ListMeals(ctx)
	if err != nil {
		return err
	}
	if len(meals) == 0 {
		fmt.Fprintln(a.out, "No meals yet.")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tEATEN AT\tDIET\tNAME")
	for _, m := range meals {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", m.ID, m.EatenAt.Local().Format(eatenAtLayout), dietLabel(m.IsOnDiet), m.Name)
	}
	return w.Flush()
}

func (a *App) metrics(ctx context.Context) error {
	m, err := a.backend.Metrics(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Total meals:         %d\n", m.TotalMeals)
	fmt.Fprintf(a.out, "On diet:             %d\n", m.OnDietMeals)
	fmt.Fprintf(a.out, "Off diet:            %d\n", m.OffDietMeals)
	fmt.Fprintf(a.out, "Best on-diet streak: %d\n", m.BestOnDietSequence)
	return nil
}
