// Interactive shell for the nutrifit CLI.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/nutrifit/internal/form"
	"github.com/mesh-intelligence/nutrifit/internal/render"
	"github.com/mesh-intelligence/nutrifit/pkg/types"
)

const shellPrompt = "nutrifit> "

const shellHelp = `Commands:
  meal <name> <calories> <category>     log a meal, or save the meal being edited
  workout <type> <minutes> <calories>   log a workout, or save the workout being edited
  edit meal|workout <id>                load a record into the form
  cancel meal|workout                   stop editing
  delete meal|workout <id>              remove a record
  list                                  show meals, workouts and totals
  totals                                show totals only
  reset                                 delete every record
  help                                  show this text
  quit                                  leave the shell
Quote values that contain spaces: meal "Chicken salad" 450 lunch`

var errQuit = errors.New("quit")

func newShellCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Work with the log interactively",
		Long: `Shell keeps one store open for a whole session so a record can be
loaded with "edit", changed, and saved back in place.

` + shellHelp,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(func(s *session) error {
				sh := &shell{store: s.store, out: cmd.OutOrStdout()}
				return sh.run(cmd.InOrStdin())
			})
		},
	}
}

// shell runs line commands against one loaded store.
type shell struct {
	store recordStore
	out   io.Writer
}

// recordStore is the subset of the record store the shell drives.
type recordStore interface {
	form.MealStore
	form.WorkoutStore
	render.Source
	Meal(id string) (types.MealEntry, bool)
	Workout(id string) (types.WorkoutEntry, bool)
	BeginEdit(kind types.Kind, id string) bool
	CancelEdit(kind types.Kind)
	Delete(kind types.Kind, id string) error
	Reset() error
}

func (sh *shell) run(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(sh.out, shellPrompt)
	for scanner.Scan() {
		err := sh.exec(scanner.Text())
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintln(sh.out, "error:", form.Message(err))
		}
		fmt.Fprint(sh.out, shellPrompt)
	}
	fmt.Fprintln(sh.out)
	return scanner.Err()
}

// exec runs one command line.
func (sh *shell) exec(line string) error {
	args, err := splitArgs(line)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return nil
	}

	switch cmd, rest := args[0], args[1:]; cmd {
	case "meal":
		return sh.submitMeal(rest)
	case "workout":
		return sh.submitWorkout(rest)
	case "edit":
		return sh.edit(rest)
	case "cancel":
		kind, err := kindArg(rest, 1)
		if err != nil {
			return err
		}
		sh.store.CancelEdit(kind)
		fmt.Fprintf(sh.out, "Stopped editing %s\n", kind)
		return nil
	case "delete":
		kind, err := kindArg(rest, 2)
		if err != nil {
			return err
		}
		if !sh.exists(kind, rest[1]) {
			return fmt.Errorf("%s %q: %w", kind, rest[1], types.ErrNotFound)
		}
		if err := sh.store.Delete(kind, rest[1]); err != nil {
			return err
		}
		fmt.Fprintf(sh.out, "Deleted %s %s\n", kind, rest[1])
		return nil
	case "list":
		return render.Dashboard(sh.out, render.Snapshot(sh.store))
	case "totals":
		return render.Totals(sh.out, sh.store.Totals())
	case "reset":
		if err := sh.store.Reset(); err != nil {
			return err
		}
		fmt.Fprintln(sh.out, "All records deleted")
		return nil
	case "help", "?":
		fmt.Fprintln(sh.out, shellHelp)
		return nil
	case "quit", "exit":
		return errQuit
	default:
		return fmt.Errorf("unknown command %q (try help)", cmd)
	}
}

func (sh *shell) submitMeal(args []string) error {
	if len(args) != 3 {
		return errors.New("usage: meal <name> <calories> <category>")
	}
	f := form.MealForm{Name: args[0], Calories: args[1], Category: args[2]}
	res, err := form.SubmitMeal(sh.store, &f)
	if err != nil {
		return err
	}
	verb := "Added"
	if res.Updated {
		verb = "Updated"
	}
	fmt.Fprintf(sh.out, "%s meal %s: %s\n", verb, res.Entry.ID, render.MealLine(res.Entry))
	return nil
}

func (sh *shell) submitWorkout(args []string) error {
	if len(args) != 3 {
		return errors.New("usage: workout <type> <minutes> <calories>")
	}
	f := form.WorkoutForm{Type: args[0], Duration: args[1], Calories: args[2]}
	res, err := form.SubmitWorkout(sh.store, &f)
	if err != nil {
		return err
	}
	verb := "Added"
	if res.Updated {
		verb = "Updated"
	}
	fmt.Fprintf(sh.out, "%s workout %s: %s\n", verb, res.Entry.ID, render.WorkoutLine(res.Entry))
	return nil
}

func (sh *shell) edit(args []string) error {
	kind, err := kindArg(args, 2)
	if err != nil {
		return err
	}
	id := args[1]
	if !sh.store.BeginEdit(kind, id) {
		return fmt.Errorf("%s %q: %w", kind, id, types.ErrNotFound)
	}

	switch kind {
	case types.KindMeal:
		m, _ := sh.store.Meal(id)
		f := form.MealFormFrom(m)
		fmt.Fprintf(sh.out, "Editing meal %s: %s\nSave with: meal %s %s %s\n", id, render.MealLine(m), shellQuote(f.Name), f.Calories, f.Category)
	case types.KindWorkout:
		w, _ := sh.store.Workout(id)
		f := form.WorkoutFormFrom(w)
		fmt.Fprintf(sh.out, "Editing workout %s: %s\nSave with: workout %s %s %s\n", id, render.WorkoutLine(w), shellQuote(f.Type), f.Duration, f.Calories)
	}
	return nil
}

func (sh *shell) exists(kind types.Kind, id string) bool {
	if kind == types.KindMeal {
		_, ok := sh.store.Meal(id)
		return ok
	}
	_, ok := sh.store.Workout(id)
	return ok
}

// kindArg parses args[0] as a kind and requires exactly n arguments.
func kindArg(args []string, n int) (types.Kind, error) {
	if len(args) != n {
		if n == 1 {
			return "", errors.New("expected meal or workout")
		}
		return "", errors.New("expected meal or workout and an id")
	}
	return types.ParseKind(args[0])
}

// splitArgs splits a line on whitespace, keeping double-quoted runs
// together. A backslash takes the next character literally.
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inQuote bool
		started bool
		escaped bool
	)
	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
			started = true
		case r == '"':
			inQuote = !inQuote
			started = true
		case !inQuote && (r == ' ' || r == '\t'):
			if started {
				args = append(args, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if inQuote {
		return nil, errors.New("unterminated quote")
	}
	if escaped {
		cur.WriteRune('\\')
	}
	if started {
		args = append(args, cur.String())
	}
	return args, nil
}

// shellQuote renders s as a single argument splitArgs reads back unchanged.
func shellQuote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}
