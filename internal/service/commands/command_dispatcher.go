package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockroom/internal/domain/models"
	"github.com/mamadbah2/stockroom/internal/service/analytics"
)

// ErrInvalidArguments indicates the command payload could not be parsed.
var ErrInvalidArguments = fmt.Errorf("%w: invalid command arguments", models.ErrValidation)

// ErrUnsupportedCommand indicates we do not yet support the requested command.
var ErrUnsupportedCommand = errors.New("unsupported command")

const (
	dateFormat    = "2006-01-02"
	maxStockLines = 10
)

const helpText = `/sale <product_id> <qty> [price]   record a sale
/restock <product_id> <qty> [lot]  add stock (a new batch when tracked)
/stock <query>                     look up products
/alerts                            list stock alerts`

// Inventory is the part of the inventory service the dispatcher drives.
type Inventory interface {
	GetByID(id string) (models.Product, error)
	Search(query string) []models.Product
	RecordSale(productID string, quantity int, price float64) (models.SalesRecord, error)
	UpdateStock(id string, delta int) (models.Product, error)
	AddBatch(productID string, batch models.Batch) (models.Batch, error)
	CheckAlerts() []models.Alert
	Sales() []models.SalesRecord
}

// SalesJournal receives every sale recorded through a command.
type SalesJournal interface {
	AppendSale(ctx context.Context, sale models.SalesRecord) error
}

// Dispatcher executes parsed commands against the inventory.
type Dispatcher interface {
	HandleCommand(ctx context.Context, cmd models.Command) (models.CommandReply, error)
}

// Service implements the Dispatcher interface.
type Service struct {
	inventory Inventory
	journal   SalesJournal
	logger    *zap.Logger
	now       func() time.Time
}

// NewService constructs a command dispatcher. journal may be nil.
func NewService(inventory Inventory, journal SalesJournal, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		inventory: inventory,
		journal:   journal,
		logger:    logger,
		now:       time.Now,
	}
}

// HandleCommand runs cmd and returns the reply text.
func (s *Service) HandleCommand(ctx context.Context, cmd models.Command) (models.CommandReply, error) {
	s.logger.Debug("dispatching command", zap.String("command", string(cmd.Type)), zap.Strings("args", cmd.Args))

	switch cmd.Type {
	case models.CommandSale:
		return s.handleSale(ctx, cmd)
	case models.CommandRestock:
		return s.handleRestock(cmd)
	case models.CommandStock:
		return s.handleStock(cmd), nil
	case models.CommandAlerts:
		return s.handleAlerts(), nil
	case models.CommandHelp:
		return models.CommandReply{Title: "Commands", Message: helpText}, nil
	default:
		return models.CommandReply{}, ErrUnsupportedCommand
	}
}

func (s *Service) handleSale(ctx context.Context, cmd models.Command) (models.CommandReply, error) {
	if len(cmd.Args) < 2 {
		return models.CommandReply{}, ErrInvalidArguments
	}
	quantity, err := strconv.Atoi(cmd.Args[1])
	if err != nil {
		return models.CommandReply{}, ErrInvalidArguments
	}
	product, err := s.inventory.GetByID(cmd.Args[0])
	if err != nil {
		return models.CommandReply{}, err
	}
	price := product.Price
	if len(cmd.Args) > 2 {
		if price, err = strconv.ParseFloat(cmd.Args[2], 64); err != nil {
			return models.CommandReply{}, ErrInvalidArguments
		}
	}

	sale, err := s.inventory.RecordSale(product.ProductID, quantity, price)
	if err != nil {
		return models.CommandReply{}, err
	}
	if s.journal != nil {
		if err := s.journal.AppendSale(ctx, sale); err != nil {
			s.logger.Warn("sale journal append failed", zap.String("sale_id", sale.ID), zap.Error(err))
		}
	}

	message := fmt.Sprintf("Sold %d x %s @ %.2f. Total %.2f (tax %.2f).", quantity, product.Name, price, sale.Total, sale.Tax)
	if summary := s.weekSummary(); summary != "" {
		message += "\n" + summary
	}
	return models.CommandReply{Title: "Sale " + sale.ID, Message: message}, nil
}

func (s *Service) handleRestock(cmd models.Command) (models.CommandReply, error) {
	if len(cmd.Args) < 2 {
		return models.CommandReply{}, ErrInvalidArguments
	}
	quantity, err := strconv.Atoi(cmd.Args[1])
	if err != nil || quantity <= 0 {
		return models.CommandReply{}, ErrInvalidArguments
	}
	product, err := s.inventory.GetByID(cmd.Args[0])
	if err != nil {
		return models.CommandReply{}, err
	}

	if product.RequiresBatchTracking {
		lot := ""
		if len(cmd.Args) > 2 {
			lot = strings.Join(cmd.Args[2:], " ")
		}
		batch, err := s.inventory.AddBatch(product.ProductID, models.Batch{
			Quantity:    quantity,
			LotNumber:   lot,
			SupplierID:  product.PreferredSupplierID,
			CostPerUnit: product.Price,
		})
		if err != nil {
			return models.CommandReply{}, err
		}
		message := fmt.Sprintf("Batch %s of %d added to %s. Stock now %d.", batch.BatchID, quantity, product.Name, product.Quantity+quantity)
		return models.CommandReply{Title: "Restock", Message: message}, nil
	}

	updated, err := s.inventory.UpdateStock(product.ProductID, quantity)
	if err != nil {
		return models.CommandReply{}, err
	}
	message := fmt.Sprintf("%s restocked by %d. Stock now %d.", updated.Name, quantity, updated.Quantity)
	return models.CommandReply{Title: "Restock", Message: message}, nil
}

func (s *Service) handleStock(cmd models.Command) models.CommandReply {
	query := strings.Join(cmd.Args, " ")
	matches := s.inventory.Search(query)
	if len(matches) == 0 {
		return models.CommandReply{Title: "Stock", Message: fmt.Sprintf("No product matches %q.", query)}
	}

	lines := make([]string, 0, maxStockLines+1)
	for i, p := range matches {
		if i == maxStockLines {
			lines = append(lines, fmt.Sprintf("... and %d more", len(matches)-maxStockLines))
			break
		}
		lines = append(lines, fmt.Sprintf("%s %s: %d @ %.2f", p.ProductID, p.Name, p.Quantity, p.Price))
	}
	return models.CommandReply{Title: "Stock", Message: strings.Join(lines, "\n")}
}

func (s *Service) handleAlerts() models.CommandReply {
	alerts := s.inventory.CheckAlerts()
	if len(alerts) == 0 {
		return models.CommandReply{Title: "Alerts", Message: "All products are above their reorder points."}
	}
	lines := make([]string, 0, len(alerts))
	for _, a := range alerts {
		lines = append(lines, fmt.Sprintf("[%s] %s", a.Level, a.Message))
	}
	return models.CommandReply{Title: "Alerts", Message: strings.Join(lines, "\n")}
}

// weekSummary totals the sales since Monday.
func (s *Service) weekSummary() string {
	now := s.now().UTC()
	start := mondayStart(now)
	snap := analytics.Snapshot{Sales: s.inventory.Sales(), Now: now}
	sum := snap.Summary(analytics.Window{Start: start, End: now})
	if sum.Transactions == 0 {
		return ""
	}
	return fmt.Sprintf("Week since %s: %d sales, %.2f revenue.", start.Format(dateFormat), sum.Transactions, sum.TotalRevenue)
}

func mondayStart(t time.Time) time.Time {
	weekday := int(t.Weekday())
	daysSinceMonday := (weekday + 6) % 7
	start := t.AddDate(0, 0, -daysSinceMonday)
	return time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
}
