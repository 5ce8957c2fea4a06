package sqlxrepos

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/filmsfather/CampusWoodieVer2/core"
	"github.com/filmsfather/CampusWoodieVer2/core/srs"
	"github.com/filmsfather/CampusWoodieVer2/core/workbook"
)

type workbookRow struct {
	ID        string      `db:"id"`
	Title     string      `db:"title"`
	Subject   string      `db:"subject"`
	Type      string      `db:"type"`
	Week      null.Int    `db:"week"`
	IsCommon  bool        `db:"is_common"`
	Required  int         `db:"required_count"`
	CreatedBy null.String `db:"created_by"`
	CreatedAt time.Time   `db:"created_at"`
	UpdatedAt time.Time   `db:"updated_at"`
}

type itemRow struct {
	ID         string      `db:"id"`
	WorkbookID string      `db:"workbook_id"`
	Position   int         `db:"position"`
	Prompt     string      `db:"prompt"`
	ItemType   string      `db:"item_type"`
	Options    null.String `db:"options"` // JSON array
	AnswerKey  null.String `db:"answer_key"`
	CreatedAt  time.Time   `db:"created_at"`
	UpdatedAt  time.Time   `db:"updated_at"`
}

const (
	workbookColumns = "id, title, subject, type, week, is_common, required_count, created_by, created_at, updated_at"
	itemColumns     = "id, workbook_id, position, prompt, item_type, options, answer_key, created_at, updated_at"
)

type workbookRepository struct {
	repository
}

var _ workbook.Repository = (*workbookRepository)(nil) // interface compliance check

func NewWorkbookRepository(exec core.DBExecutor) *workbookRepository {
	return &workbookRepository{repository{exec: exec}}
}

func (repo workbookRepository) toRow(wb workbook.Workbook) workbookRow {
	return workbookRow{
		ID:        wb.ID,
		Title:     wb.Title,
		Subject:   wb.Subject,
		Type:      wb.Type,
		Week:      null.IntFromPtr(wb.Week),
		IsCommon:  wb.IsCommon,
		Required:  wb.RequiredCount,
		CreatedBy: null.NewString(wb.CreatedBy, wb.CreatedBy != ""),
		CreatedAt: wb.CreatedAt.UTC(),
		UpdatedAt: wb.UpdatedAt.UTC(),
	}
}

func (repo workbookRepository) fromRow(row workbookRow) workbook.Workbook {
	return workbook.Workbook{
		ID:            row.ID,
		Title:         row.Title,
		Subject:       row.Subject,
		Type:          row.Type,
		Week:          row.Week.Ptr(),
		IsCommon:      row.IsCommon,
		RequiredCount: row.Required,
		CreatedBy:     row.CreatedBy.String,
		CreatedAt:     row.CreatedAt.UTC(),
		UpdatedAt:     row.UpdatedAt.UTC(),
	}
}

func (repo workbookRepository) toItemRow(it workbook.Item) (itemRow, error) {
	row := itemRow{
		ID:         it.ID,
		WorkbookID: it.WorkbookID,
		Position:   it.Position,
		Prompt:     it.Prompt,
		ItemType:   string(it.Type),
		AnswerKey:  null.NewString(it.AnswerKey, it.AnswerKey != ""),
		CreatedAt:  it.CreatedAt.UTC(),
		UpdatedAt:  it.UpdatedAt.UTC(),
	}
	if len(it.Options) > 0 {
		opts, err := json.Marshal(it.Options)
		if err != nil {
			return itemRow{}, errors.Wrap(err, "encoding options")
		}
		row.Options = null.StringFrom(string(opts))
	}
	return row, nil
}

func (repo workbookRepository) fromItemRow(row itemRow) (workbook.Item, error) {
	it := workbook.Item{
		ID:         row.ID,
		WorkbookID: row.WorkbookID,
		Position:   row.Position,
		Prompt:     row.Prompt,
		Type:       srs.ItemType(row.ItemType),
		AnswerKey:  row.AnswerKey.String,
		CreatedAt:  row.CreatedAt.UTC(),
		UpdatedAt:  row.UpdatedAt.UTC(),
	}
	if row.Options.Valid && row.Options.String != "" {
		if err := json.Unmarshal([]byte(row.Options.String), &it.Options); err != nil {
			return workbook.Item{}, errors.Wrapf(err, "decoding options of item %s", row.ID)
		}
	}
	return it, nil
}

func (repo workbookRepository) CreateWorkbook(ctx context.Context, wb workbook.Workbook, exec ...core.DBExecutor) (workbook.Workbook, error) {
	exe := repo.getExec(exec)
	wb.ID = uuid.NewString()
	row := repo.toRow(wb)

	q := exe.Rebind("INSERT INTO workbooks (" + workbookColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
	_, err := exe.ExecContext(ctx, q,
		row.ID, row.Title, row.Subject, row.Type, row.Week, row.IsCommon, row.Required, row.CreatedBy, row.CreatedAt, row.UpdatedAt)
	if err != nil {
		return workbook.Workbook{}, errors.Wrap(err, "inserting workbook")
	}
	return repo.fromRow(row), nil
}

func (repo workbookRepository) GetWorkbookByID(ctx context.Context, id string, exec ...core.DBExecutor) (workbook.Workbook, error) {
	exe := repo.getExec(exec)
	var row workbookRow
	q := exe.Rebind("SELECT " + workbookColumns + " FROM workbooks WHERE id = ?")
	if err := exe.GetContext(ctx, &row, q, id); err != nil {
		return workbook.Workbook{}, notFound(errors.Wrap(err, "selecting workbook"), workbook.ErrNotFound)
	}
	return repo.fromRow(row), nil
}

func (repo workbookRepository) CreateItem(ctx context.Context, it workbook.Item, exec ...core.DBExecutor) (workbook.Item, error) {
	exe := repo.getExec(exec)
	it.ID = uuid.NewString()
	row, err := repo.toItemRow(it)
	if err != nil {
		return workbook.Item{}, err
	}

	q := exe.Rebind("INSERT INTO workbook_items (" + itemColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)")
	_, err = exe.ExecContext(ctx, q,
		row.ID, row.WorkbookID, row.Position, row.Prompt, row.ItemType, row.Options, row.AnswerKey, row.CreatedAt, row.UpdatedAt)
	if err != nil {
		return workbook.Item{}, errors.Wrap(err, "inserting item")
	}
	return repo.fromItemRow(row)
}

func (repo workbookRepository) GetItemByID(ctx context.Context, id string, exec ...core.DBExecutor) (workbook.Item, error) {
	exe := repo.getExec(exec)
	var row itemRow
	q := exe.Rebind("SELECT " + itemColumns + " FROM workbook_items WHERE id = ?")
	if err := exe.GetContext(ctx, &row, q, id); err != nil {
		return workbook.Item{}, notFound(errors.Wrap(err, "selecting item"), workbook.ErrItemNotFound)
	}
	return repo.fromItemRow(row)
}

func (repo workbookRepository) ListItems(ctx context.Context, workbookID string, exec ...core.DBExecutor) ([]workbook.Item, error) {
	exe := repo.getExec(exec)
	var rows []itemRow
	q := exe.Rebind("SELECT " + itemColumns + " FROM workbook_items WHERE workbook_id = ? ORDER BY position")
	if err := exe.SelectContext(ctx, &rows, q, workbookID); err != nil {
		return nil, errors.Wrap(err, "selecting items")
	}

	items := make([]workbook.Item, 0, len(rows))
	for _, row := range rows {
		it, err := repo.fromItemRow(row)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, nil
}

func (repo workbookRepository) MaxItemPosition(ctx context.Context, workbookID string, exec ...core.DBExecutor) (int, error) {
	exe := repo.getExec(exec)
	var pos int
	q := exe.Rebind("SELECT COALESCE(MAX(position), 0) FROM workbook_items WHERE workbook_id = ?")
	if err := exe.GetContext(ctx, &pos, q, workbookID); err != nil {
		return 0, errors.Wrap(err, "selecting max position")
	}
	return pos, nil
}

func (repo workbookRepository) UpdateItem(ctx context.Context, it workbook.Item, exec ...core.DBExecutor) (workbook.Item, error) {
	exe := repo.getExec(exec)
	row, err := repo.toItemRow(it)
	if err != nil {
		return workbook.Item{}, err
	}

	q := exe.Rebind(`
		UPDATE workbook_items SET prompt = ?, item_type = ?, options = ?, answer_key = ?, updated_at = ?
		WHERE id = ?`)
	res, err := exe.ExecContext(ctx, q, row.Prompt, row.ItemType, row.Options, row.AnswerKey, row.UpdatedAt, row.ID)
	if err != nil {
		return workbook.Item{}, errors.Wrap(err, "updating item")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return workbook.Item{}, workbook.ErrItemNotFound
	}
	return repo.GetItemByID(ctx, it.ID, exe)
}
