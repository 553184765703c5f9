package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/healthlog/internal/client/models"
	"github.com/dmitrijs2005/healthlog/internal/client/services"
	"github.com/dmitrijs2005/healthlog/internal/common"
)

func (a *App) journal() (*models.Session, *services.RecordService, error) {
	sess, recs := a.current()
	if sess == nil || recs == nil {
		return nil, nil, common.Ef(common.KindNotAuthenticated, "cli", "not logged in")
	}
	return sess, recs, nil
}

func parseLocalID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, common.Ef(common.KindInvalidInput, "cli", "invalid id %q", s)
	}
	return id, nil
}

func parseSeverity(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, common.Ef(common.KindInvalidInput, "cli", "severity must be a number, got %q", s)
	}
	return &v, nil
}

func categoryPrompt() string {
	names := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		names[i] = string(c)
	}
	return "Category (" + strings.Join(names, ", ") + ")"
}

// Add prompts for a new journal entry and saves it encrypted.
func (a *App) Add(ctx context.Context) error {
	sess, recs, err := a.journal()
	if err != nil {
		return err
	}

	var d models.Draft
	if d.Title, err = getSimpleText(a.reader, "Title", a.out); err != nil {
		return err
	}
	category, err := getSimpleText(a.reader, categoryPrompt(), a.out)
	if err != nil {
		return err
	}
	d.Category = models.Category(strings.ToLower(category))

	severity, err := getSimpleText(a.reader, "Severity 1-5 (Enter to skip)", a.out)
	if err != nil {
		return err
	}
	if d.Severity, err = parseSeverity(severity); err != nil {
		return err
	}

	if d.Date, err = getSimpleText(a.reader, "Date YYYY-MM-DD (Enter for today)", a.out); err != nil {
		return err
	}
	if d.Date == "" {
		d.Date = time.Now().Format(models.DateLayout)
	}

	if d.Description, err = getSimpleText(a.reader, "Description", a.out); err != nil {
		return err
	}
	tags, err := getSimpleText(a.reader, "Tags (comma separated)", a.out)
	if err != nil {
		return err
	}
	d.Tags = splitTags(tags)

	if d.Notes, err = GetMultiline(a.reader, "Notes", a.out); err != nil {
		return err
	}

	h, err := recs.Create(ctx, sess.UserID, d)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved entry %d\n", h.LocalID)
	return nil
}

func (a *App) List(ctx context.Context) error {
	sess, recs, err := a.journal()
	if err != nil {
		return err
	}
	logs, err := recs.GetAll(ctx, sess.UserID)
	if err != nil {
		return err
	}
	printLogs(a.out, logs)
	return nil
}

func (a *App) Show(ctx context.Context, id string) error {
	_, recs, err := a.journal()
	if err != nil {
		return err
	}
	localID, err := parseLocalID(id)
	if err != nil {
		return err
	}

	h, err := recs.Get(ctx, localID)
	if err != nil {
		return err
	}
	if h == nil {
		fmt.Fprintf(a.out, "Entry %d not found\n", localID)
		return nil
	}
	printLog(a.out, h)
	return nil
}

// Edit walks through every field of an entry showing the current value.
// Empty answers keep the field unchanged.
func (a *App) Edit(ctx context.Context, id string) error {
	_, recs, err := a.journal()
	if err != nil {
		return err
	}
	localID, err := parseLocalID(id)
	if err != nil {
		return err
	}

	h, err := recs.Get(ctx, localID)
	if err != nil {
		return err
	}
	if h == nil {
		return common.Ef(common.KindNotFound, "cli", "entry %d not found", localID)
	}

	p := models.Patch{ID: h.ID}
	if p.Title, err = GetTextOrKeep(a.reader, "Title", h.Title, a.out); err != nil {
		return err
	}

	category, err := GetTextOrKeep(a.reader, categoryPrompt(), string(h.Category), a.out)
	if err != nil {
		return err
	}
	if category != nil {
		c := models.Category(strings.ToLower(*category))
		p.Category = &c
	}

	severity, err := GetTextOrKeep(a.reader, "Severity 1-5", formatSeverity(h.Severity), a.out)
	if err != nil {
		return err
	}
	if severity != nil {
		if p.Severity, err = parseSeverity(*severity); err != nil {
			return err
		}
		p.ClearSeverity = p.Severity == nil
	}

	if p.Date, err = GetTextOrKeep(a.reader, "Date", h.Date, a.out); err != nil {
		return err
	}
	if p.Description, err = GetTextOrKeep(a.reader, "Description", h.Description, a.out); err != nil {
		return err
	}

	tags, err := GetTextOrKeep(a.reader, "Tags", strings.Join(h.Tags, ", "), a.out)
	if err != nil {
		return err
	}
	if tags != nil {
		p.Tags = splitTags(*tags)
		if p.Tags == nil {
			p.Tags = []string{}
		}
	}

	if p.Notes, err = GetTextOrKeep(a.reader, "Notes", oneLine(h.Notes), a.out); err != nil {
		return err
	}

	if _, err := recs.Update(ctx, localID, p); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Updated entry %d\n", localID)
	return nil
}

func (a *App) Delete(ctx context.Context, id string) error {
	_, recs, err := a.journal()
	if err != nil {
		return err
	}
	localID, err := parseLocalID(id)
	if err != nil {
		return err
	}
	if err := recs.Delete(ctx, localID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted entry %d\n", localID)
	return nil
}

func (a *App) Search(ctx context.Context, term string) error {
	sess, recs, err := a.journal()
	if err != nil {
		return err
	}
	logs, err := recs.Search(ctx, sess.UserID, term)
	if err != nil {
		return err
	}
	printLogs(a.out, logs)
	return nil
}

func (a *App) Category(ctx context.Context, name string) error {
	sess, recs, err := a.journal()
	if err != nil {
		return err
	}
	logs, err := recs.FindByCategory(ctx, sess.UserID, models.Category(strings.ToLower(name)))
	if err != nil {
		return err
	}
	printLogs(a.out, logs)
	return nil
}
