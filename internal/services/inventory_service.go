package services

import (
	"fmt"

	"vastra/internal/logger"
	"vastra/internal/models"
	"vastra/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InventoryService is the inventory ledger: it owns every stock mutation
// the order pipeline makes. Reservations are all-or-nothing across the cart
// lines of one order.
type InventoryService struct {
	repo repositories.InventoryRepository
}

// NewInventoryService creates a new InventoryService.
func NewInventoryService(repo repositories.InventoryRepository) *InventoryService {
	return &InventoryService{
		repo: repo,
	}
}

// Reservation records which counters an order decremented, so the exact
// amounts can be put back if a later pipeline step fails.
type Reservation struct {
	ID      string
	Entries []ReservationEntry
}

// ReservationEntry is one decremented counter.
type ReservationEntry struct {
	RecordID string
	Quantity int
}

// TryReserve atomically decrements the counter behind every cart line. If
// any line cannot be satisfied, all decrements made so far are rolled back
// before the error is returned, and the error names the failing line.
func (s *InventoryService) TryReserve(lines []models.OrderLineItem) (*Reservation, error) {
	res := &Reservation{ID: uuid.New().String()}

	for i, line := range lines {
		record, err := s.resolveCounter(line)
		if err != nil {
			s.rollback(res)
			return nil, err
		}
		if record == nil {
			s.rollback(res)
			return nil, &InsufficientStockError{
				LineIndex: i,
				ProductID: line.ProductID,
				SizeCode:  line.SizeCode,
				ColorName: line.ColorName,
				Available: 0,
			}
		}

		ok, err := s.repo.DecrementStock(record.ID, line.Quantity)
		if err != nil {
			s.rollback(res)
			return nil, err
		}
		if !ok {
			available := 0
			if current, ferr := s.repo.GetRecord(record.ID); ferr == nil {
				available = current.Stock
			}
			s.rollback(res)
			return nil, &InsufficientStockError{
				LineIndex: i,
				ProductID: line.ProductID,
				SizeCode:  line.SizeCode,
				ColorName: line.ColorName,
				Available: available,
			}
		}

		res.Entries = append(res.Entries, ReservationEntry{
			RecordID: record.ID,
			Quantity: line.Quantity,
		})
	}

	return res, nil
}

// Release is the compensating action for a reservation made in the same
// pipeline run: it puts back exactly the decremented amounts.
func (s *InventoryService) Release(res *Reservation) error {
	if res == nil {
		return nil
	}
	var firstErr error
	for _, entry := range res.Entries {
		if err := s.repo.IncrementStock(entry.RecordID, entry.Quantity); err != nil {
			logger.L().Error("failed to release reserved stock",
				zap.String("record_id", entry.RecordID),
				zap.Int("quantity", entry.Quantity),
				zap.Error(err),
			)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Restore puts stock back for a persisted order's line items, re-resolving
// each counter. Used on cancellation and on approved returns, where the
// original reservation is long gone.
func (s *InventoryService) Restore(lines []models.OrderLineItem) error {
	var firstErr error
	for _, line := range lines {
		record, err := s.resolveCounter(line)
		if err == nil && record == nil {
			err = fmt.Errorf("no inventory counter for product %s", line.ProductID)
		}
		if err != nil {
			logger.L().Error("failed to resolve counter for restore",
				zap.String("product_id", line.ProductID),
				zap.Error(err),
			)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if err := s.repo.IncrementStock(record.ID, line.Quantity); err != nil {
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (s *InventoryService) rollback(res *Reservation) {
	if err := s.Release(res); err != nil {
		logger.L().Error("reservation rollback left stock inconsistent", zap.Error(err))
	}
}

// resolveCounter picks the counter a line decrements. Color-variant stock
// is authoritative when the product tracks colors; a size request on a
// product with no size-tracked rows falls back to the product-level
// counter. A nil result with nil error means the requested variant has no
// counter at all, which the caller reports as zero availability.
func (s *InventoryService) resolveCounter(line models.OrderLineItem) (*models.InventoryRecord, error) {
	records, err := s.repo.FindByProduct(line.ProductID)
	if err != nil {
		return nil, err
	}

	var base *models.InventoryRecord
	hasColor, hasSize := false, false
	for i := range records {
		switch {
		case records[i].ColorName != "":
			hasColor = true
		case records[i].SizeCode != "":
			hasSize = true
		default:
			base = &records[i]
		}
	}

	if line.ColorName != "" && hasColor {
		for i := range records {
			if records[i].ColorName == line.ColorName {
				return &records[i], nil
			}
		}
		// Other colors are tracked but this one is not: reject the line,
		// not the product.
		return nil, nil
	}

	if line.SizeCode != "" && hasSize {
		for i := range records {
			if records[i].ColorName == "" && records[i].SizeCode == line.SizeCode {
				return &records[i], nil
			}
		}
		return nil, nil
	}

	return base, nil
}
