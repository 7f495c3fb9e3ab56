package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fleetledger/fleetledger/internal/model"
	"github.com/fleetledger/fleetledger/internal/preview"
)

// Prompter implements the interactive terminal review loop for an import
// session. It satisfies reconcile.Reviewer.
type Prompter struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewPrompter creates a prompter over the given reader and writer, defaulting
// to stdin/stdout.
func NewPrompter(reader io.Reader, writer io.Writer) *Prompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}
	return &Prompter{
		reader: bufio.NewReader(reader),
		writer: writer,
	}
}

// Review runs the edit loop until the user commits or abandons the import.
func (p *Prompter) Review(ctx context.Context, session *preview.Session) (bool, error) {
	p.renderSession(session)

	for {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		default:
		}

		input, err := p.prompt("Action (# to edit an entry, [l]ist, [c]ommit, [q]uit)")
		if err != nil {
			return false, err
		}

		switch input {
		case "l":
			p.renderSession(session)
		case "c":
			if !session.CanCommit() {
				p.println(FormatWarning("nothing to commit: no entries with a matched vehicle"))
				continue
			}
			p.printf("%s\n", FormatPrompt(fmt.Sprintf(
				"Import %d matched of %d entries totaling $%.2f? [y/N]",
				session.MatchedCount(), session.Len(), session.TotalAmount())))
			confirm, err := p.readLine()
			if err != nil {
				return false, err
			}
			if strings.EqualFold(confirm, "y") {
				return true, nil
			}
		case "q", "":
			return false, nil
		default:
			index, err := strconv.Atoi(input)
			if err != nil || index < 1 || index > session.Len() {
				p.println(FormatError(fmt.Sprintf("enter an entry number between 1 and %d", session.Len())))
				continue
			}
			if err := p.editEntry(ctx, session, index-1); err != nil {
				return false, err
			}
			p.renderSession(session)
		}
	}
}

// editEntry runs the per-entry submenu until the user backs out or removes
// the entry.
func (p *Prompter) editEntry(ctx context.Context, session *preview.Session, index int) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		entries := session.Entries()
		if index >= len(entries) {
			return nil
		}
		entry := entries[index]
		p.println(RenderBox(fmt.Sprintf("Entry %d", index+1), p.formatEntry(&entry)))

		input, err := p.prompt("Edit ([v]ehicle, [b]ranch, [t]ype/category, [d]ate, [a]mount, [e]description, [o]dometer, [r]emove, [x] back)")
		if err != nil {
			return err
		}

		switch input {
		case "v":
			id, ok, err := p.pickVehicle(session.Snapshot().Vehicles)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			if err := session.SetVehicle(index, id); err != nil {
				p.println(FormatError(err.Error()))
			}
		case "b":
			id, ok, err := p.pickBranch(session.Snapshot().Branches)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			if err := session.SetBranch(index, id); err != nil {
				p.println(FormatError(err.Error()))
			}
		case "t":
			id, ok, err := p.pickCategory(session.Snapshot().Categories)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			if err := session.SetCategory(index, id); err != nil {
				p.println(FormatError(err.Error()))
			}
		case "d":
			raw, err := p.prompt("Date (YYYY-MM-DD)")
			if err != nil {
				return err
			}
			date, parseErr := time.Parse("2006-01-02", raw)
			if parseErr != nil {
				p.println(FormatError("invalid date, expected YYYY-MM-DD"))
				continue
			}
			if err := session.SetDate(index, date); err != nil {
				p.println(FormatError(err.Error()))
			}
		case "a":
			raw, err := p.prompt("Amount")
			if err != nil {
				return err
			}
			amount, parseErr := strconv.ParseFloat(raw, 64)
			if parseErr != nil {
				p.println(FormatError("invalid amount"))
				continue
			}
			if err := session.SetAmount(index, amount); err != nil {
				p.println(FormatError(err.Error()))
			}
		case "e":
			raw, err := p.prompt("Description")
			if err != nil {
				return err
			}
			if err := session.SetDescription(index, raw); err != nil {
				p.println(FormatError(err.Error()))
			}
		case "o":
			raw, err := p.prompt("Odometer (blank to clear)")
			if err != nil {
				return err
			}
			if raw == "" {
				if err := session.SetOdometer(index, nil); err != nil {
					p.println(FormatError(err.Error()))
				}
				continue
			}
			odo, parseErr := strconv.ParseInt(raw, 10, 64)
			if parseErr != nil {
				p.println(FormatError("invalid odometer"))
				continue
			}
			if err := session.SetOdometer(index, &odo); err != nil {
				p.println(FormatError(err.Error()))
			}
		case "r":
			if err := session.Remove(index); err != nil {
				p.println(FormatError(err.Error()))
			}
			return nil
		case "x", "":
			return nil
		}
	}
}

func (p *Prompter) pickVehicle(vehicles []model.Vehicle) (int64, bool, error) {
	for _, v := range vehicles {
		p.printf("  [%d] %s\n", v.ID, v.DisplayName())
	}
	return p.pickID("Vehicle id (0 to clear)")
}

func (p *Prompter) pickBranch(branches []model.Branch) (int64, bool, error) {
	for _, b := range branches {
		p.printf("  [%d] %s (%s)\n", b.ID, b.Name, b.Location)
	}
	return p.pickID("Branch id (0 to clear)")
}

func (p *Prompter) pickCategory(categories []model.Category) (int64, bool, error) {
	for _, c := range categories {
		p.printf("  [%d] %s\n", c.ID, c.Name)
	}
	return p.pickID("Category id (0 to clear)")
}

// pickID reads an id selection. A value that is not a number is reported and
// leaves the entry unchanged rather than clearing the link.
func (p *Prompter) pickID(label string) (int64, bool, error) {
	raw, err := p.prompt(label)
	if err != nil {
		return 0, false, err
	}
	id, parseErr := strconv.ParseInt(raw, 10, 64)
	if parseErr != nil {
		p.println(FormatError(fmt.Sprintf("invalid id %q", raw)))
		return 0, false, nil
	}
	return id, true, nil
}

// renderSession prints the stats line and the entry table.
func (p *Prompter) renderSession(session *preview.Session) {
	p.println(TitleStyle.Render(fmt.Sprintf("%s Import preview", TruckIcon)))
	p.printf("%s\n\n", SubtleStyle.Render(fmt.Sprintf(
		"%d entries · %d matched · %d unmatched · total $%.2f",
		session.Len(), session.MatchedCount(), session.UnmatchedCount(), session.TotalAmount())))

	p.println(TableHeaderStyle.Render(fmt.Sprintf(
		"%-4s %-11s %-22s %-14s %-12s %10s  %s",
		"#", "Date", "Vehicle", "Branch", "Category", "Amount", "Description")))

	for i, entry := range session.Entries() {
		date := "—"
		if !entry.Date.IsZero() {
			date = entry.Date.Format("2006-01-02")
		}
		vehicle := ErrorStyle.Render("unmatched")
		if entry.Vehicle != nil {
			vehicle = entry.Vehicle.DisplayName()
		}
		branch := "—"
		if entry.Branch != nil {
			branch = entry.Branch.Name
		}
		category := "—"
		if entry.Category != nil {
			category = entry.Category.Name
		}

		p.printf("%-4d %-11s %-22s %-14s %-12s %10.2f  %s\n",
			i+1, date, truncate(vehicle, 22), truncate(branch, 14),
			truncate(category, 12), entry.Amount, truncate(entry.Description, 40))
	}
	p.println("")
}

func (p *Prompter) formatEntry(entry *model.PreviewEntry) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Source:      %s line %d\n", entry.Record.SourceFile, entry.Record.LineNumber)
	if entry.Date.IsZero() {
		fmt.Fprintf(&sb, "Date:        %s\n", WarningStyle.Render("unknown"))
	} else {
		fmt.Fprintf(&sb, "Date:        %s\n", entry.Date.Format("2006-01-02"))
	}
	if entry.Vehicle != nil {
		fmt.Fprintf(&sb, "Vehicle:     %s\n", entry.Vehicle.DisplayName())
	} else {
		fmt.Fprintf(&sb, "Vehicle:     %s %q\n", ErrorStyle.Render("unmatched"), entry.Record.VehicleText)
	}
	if entry.Branch != nil {
		fmt.Fprintf(&sb, "Branch:      %s\n", entry.Branch.Name)
	} else {
		fmt.Fprintf(&sb, "Branch:      %s %q\n", SubtleStyle.Render("unmatched"), entry.Record.BranchText)
	}
	if entry.Category != nil {
		fmt.Fprintf(&sb, "Category:    %s\n", entry.Category.Name)
	} else {
		fmt.Fprintf(&sb, "Category:    %s %q\n", SubtleStyle.Render("unmatched"), entry.Record.CategoryText)
	}
	fmt.Fprintf(&sb, "Amount:      $%.2f\n", entry.Amount)
	if entry.Odometer != nil {
		fmt.Fprintf(&sb, "Odometer:    %d\n", *entry.Odometer)
	}
	fmt.Fprintf(&sb, "Description: %s", entry.Description)

	return sb.String()
}

func (p *Prompter) prompt(label string) (string, error) {
	p.printf("%s ", FormatPrompt(label+":"))
	return p.readLine()
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func (p *Prompter) println(s string) {
	_, _ = fmt.Fprintln(p.writer, s)
}

func (p *Prompter) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.writer, format, args...)
}

// truncate shortens by runes so multibyte characters are never split.
func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 1 {
		return string(runes[:width])
	}
	return string(runes[:width-1]) + "…"
}
