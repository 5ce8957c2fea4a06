package workbook

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/filmsfather/CampusWoodieVer2/core"
	"github.com/filmsfather/CampusWoodieVer2/core/srs"
)

var (
	ErrNotFound     = errors.New("workbook not found")
	ErrItemNotFound = errors.New("workbook item not found")
	ErrNotSRS       = errors.New("only SRS workbooks have items")
)

type (
	Repository interface {
		CreateWorkbook(ctx context.Context, wb Workbook, exec ...core.DBExecutor) (Workbook, error)
		GetWorkbookByID(ctx context.Context, id string, exec ...core.DBExecutor) (Workbook, error)
		CreateItem(ctx context.Context, it Item, exec ...core.DBExecutor) (Item, error)
		GetItemByID(ctx context.Context, id string, exec ...core.DBExecutor) (Item, error)
		// ListItems returns the items of a workbook ordered by position.
		ListItems(ctx context.Context, workbookID string, exec ...core.DBExecutor) ([]Item, error)
		// MaxItemPosition returns the last position used in a workbook, 0 when it has no items.
		MaxItemPosition(ctx context.Context, workbookID string, exec ...core.DBExecutor) (int, error)
		UpdateItem(ctx context.Context, it Item, exec ...core.DBExecutor) (Item, error)
	}

	Service interface {
		Create(ctx context.Context, creatorID string, nw NewWorkbook) (Workbook, error)
		// Get returns the workbook with its ordered items.
		Get(ctx context.Context, id string) (Workbook, error)
		Items(ctx context.Context, workbookID string) ([]Item, error)
		GetItem(ctx context.Context, workbookID, itemID string) (Item, error)
		// AddItems appends items at the end of an SRS workbook, all or none.
		AddItems(ctx context.Context, workbookID string, items ...NewItem) ([]Item, error)
		UpdateItem(ctx context.Context, workbookID, itemID string, ni NewItem) (Item, error)
	}

	service struct {
		db    core.DB
		repo  Repository
		clock srs.Clock
	}
)

var _ Service = (*service)(nil)

func NewService(db core.DB, repo Repository, clock srs.Clock) Service {
	return &service{db: db, repo: repo, clock: clock}
}

func (svc *service) Create(ctx context.Context, creatorID string, nw NewWorkbook) (Workbook, error) {
	now := svc.clock.Now().UTC()
	wb := Workbook{
		Title:         nw.Title,
		Subject:       nw.Subject,
		Type:          nw.Type,
		Week:          nw.Week,
		IsCommon:      nw.IsCommon,
		RequiredCount: nw.requiredCount(),
		CreatedBy:     creatorID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := core.WithTx(ctx, svc.db, func(tx core.DBExecutor) error {
		var err error
		if wb, err = svc.repo.CreateWorkbook(ctx, wb, tx); err != nil {
			return errors.Wrap(err, "creating workbook")
		}
		wb.Items, err = svc.appendItems(ctx, tx, wb.ID, 0, now, nw.Items)
		return err
	})
	if err != nil {
		return Workbook{}, err
	}
	return wb, nil
}

func (svc *service) appendItems(ctx context.Context, exec core.DBExecutor, wbID string, lastPos int, now time.Time, nis []NewItem) ([]Item, error) {
	items := make([]Item, 0, len(nis))
	for i, ni := range nis {
		it, err := svc.repo.CreateItem(ctx, Item{
			WorkbookID: wbID,
			Position:   lastPos + i + 1,
			Prompt:     ni.Prompt,
			Type:       ni.Type,
			Options:    ni.Options,
			AnswerKey:  ni.AnswerKey,
			CreatedAt:  now,
			UpdatedAt:  now,
		}, exec)
		if err != nil {
			return nil, errors.Wrap(err, "creating item")
		}
		items = append(items, it)
	}
	return items, nil
}

func (svc *service) Get(ctx context.Context, id string) (Workbook, error) {
	wb, err := svc.repo.GetWorkbookByID(ctx, id)
	if err != nil {
		return Workbook{}, err
	}
	if wb.Items, err = svc.repo.ListItems(ctx, id); err != nil {
		return Workbook{}, errors.Wrap(err, "listing items")
	}
	return wb, nil
}

func (svc *service) Items(ctx context.Context, workbookID string) ([]Item, error) {
	return svc.repo.ListItems(ctx, workbookID)
}

func (svc *service) GetItem(ctx context.Context, workbookID, itemID string) (Item, error) {
	it, err := svc.repo.GetItemByID(ctx, itemID)
	if err != nil {
		return Item{}, err
	}
	if it.WorkbookID != workbookID {
		return Item{}, ErrItemNotFound
	}
	return it, nil
}

func (svc *service) AddItems(ctx context.Context, workbookID string, nis ...NewItem) ([]Item, error) {
	var items []Item
	err := core.WithTx(ctx, svc.db, func(tx core.DBExecutor) error {
		wb, err := svc.repo.GetWorkbookByID(ctx, workbookID, tx)
		if err != nil {
			return err
		}
		if !wb.IsSRS() {
			return core.FieldValidationError("items", ErrNotSRS)
		}
		lastPos, err := svc.repo.MaxItemPosition(ctx, workbookID, tx)
		if err != nil {
			return errors.Wrap(err, "getting last item position")
		}
		items, err = svc.appendItems(ctx, tx, workbookID, lastPos, svc.clock.Now().UTC(), nis)
		return err
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (svc *service) UpdateItem(ctx context.Context, workbookID, itemID string, ni NewItem) (Item, error) {
	it, err := svc.GetItem(ctx, workbookID, itemID)
	if err != nil {
		return Item{}, err
	}
	it.Prompt = ni.Prompt
	it.Type = ni.Type
	it.Options = ni.Options
	it.AnswerKey = ni.AnswerKey
	it.UpdatedAt = svc.clock.Now().UTC()
	return svc.repo.UpdateItem(ctx, it)
}
