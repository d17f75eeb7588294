package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/agriconnect/whatsapp-backend/internal/metrics"
	"github.com/agriconnect/whatsapp-backend/internal/models"
	"github.com/agriconnect/whatsapp-backend/internal/storage"
	"github.com/agriconnect/whatsapp-backend/pkg/logger"
)

// ConversationEngine runs the WhatsApp menu state machine, one transition per inbound message.
type ConversationEngine struct {
	sessions   storage.SessionStore
	catalog    storage.Catalog
	dispatcher Dispatcher
	metrics    *metrics.BotMetrics
	logger     *logger.Logger
	farmerID   string
	locks      *userLocks
	now        func() time.Time
}

// EngineOptions holds the optional collaborators of the engine.
type EngineOptions struct {
	DefaultFarmerID string
	Metrics         *metrics.BotMetrics
	Logger          *logger.Logger
}

// Transition describes what one inbound message did to a session.
type Transition struct {
	UserID     string                   `json:"user_id"`
	From       models.ConversationState `json:"from"`
	To         models.ConversationState `json:"to"`
	Replies    []string                 `json:"replies"`
	NewSession bool                     `json:"new_session"`
}

// NewConversationEngine wires the engine to its session store, catalog and dispatcher.
func NewConversationEngine(sessions storage.SessionStore, catalog storage.Catalog, dispatcher Dispatcher, opts EngineOptions) *ConversationEngine {
	if opts.DefaultFarmerID == "" {
		opts.DefaultFarmerID = "00000000-0000-0000-0000-000000000001"
	}
	return &ConversationEngine{
		sessions:   sessions,
		catalog:    catalog,
		dispatcher: dispatcher,
		metrics:    opts.Metrics,
		logger:     logger.OrGlobal(opts.Logger),
		farmerID:   opts.DefaultFarmerID,
		locks:      newUserLocks(),
		now:        time.Now,
	}
}

// turn collects the replies of a single transition and sends them in order.
type turn struct {
	ctx     context.Context
	engine  *ConversationEngine
	userID  string
	replies []string
	log     *logger.Logger
}

// reply sends body and moves on. Send failures are logged and counted by InstrumentedDispatcher.
func (t *turn) reply(body string) {
	t.replies = append(t.replies, body)
	_ = t.engine.dispatcher.Send(t.ctx, t.userID, body)
}

// HandleMessage applies one inbound message from userID. Replies are dispatched before it
// returns. A non-nil error means the session could not be loaded or saved; the user has
// already been told something went wrong.
func (e *ConversationEngine) HandleMessage(ctx context.Context, userID, text string) (*Transition, error) {
	if userID == "" {
		return nil, errors.New("conversation: sender required")
	}

	unlock := e.locks.lock(userID)
	defer unlock()

	t := &turn{ctx: ctx, engine: e, userID: userID, log: e.logger.ForUser(userID)}

	session, err := e.sessions.Get(ctx, userID)
	isNew := false
	switch {
	case errors.Is(err, storage.ErrSessionNotFound):
		session = models.NewSession(userID)
		isNew = true
		e.metrics.SessionStarted()
	case err != nil:
		t.log.Error("failed to load session", zap.Error(err))
		t.reply(GenericErrorMessage)
		return &Transition{UserID: userID, Replies: t.replies}, fmt.Errorf("conversation: load session: %w", err)
	}

	from := session.State
	e.step(t, session, text)
	session.UpdatedAt = e.now()

	tr := &Transition{
		UserID:     userID,
		From:       from,
		To:         session.State,
		Replies:    t.replies,
		NewSession: isNew,
	}
	e.metrics.ObserveTransition(string(from), string(session.State))
	t.log.Info("conversation transition",
		zap.String("from", string(from)),
		zap.String("to", string(session.State)),
		zap.Int("replies", len(t.replies)),
	)

	if err := e.sessions.Set(ctx, session); err != nil {
		t.log.Error("failed to save session", zap.Error(err))
		return tr, fmt.Errorf("conversation: save session: %w", err)
	}
	return tr, nil
}

// step mutates session according to the transition table.
func (e *ConversationEngine) step(t *turn, session *models.Session, raw string) {
	text := strings.TrimSpace(raw)
	input := strings.ToLower(text)

	// hi/hello/menu leave any flow, except in INITIAL where every input already greets.
	if session.State != models.StateInitial && isGreeting(input) {
		session.State = models.StateInitial
		session.Draft = nil
		t.reply(WelcomeMessage)
		return
	}

	switch session.State {
	case models.StateInitial:
		t.reply(WelcomeMessage)
		session.State = models.StateRoleSelect

	case models.StateRoleSelect:
		switch input {
		case "1":
			session.State = models.StateFarmerMenu
			t.reply(FarmerMenuMessage)
		case "2":
			session.State = models.StateVendorMenu
			t.reply(VendorMenuMessage)
		default:
			t.reply(RoleRepromptMessage)
		}

	case models.StateFarmerMenu:
		switch input {
		case "1":
			session.State = models.StateAddProductName
			session.Draft = nil
			t.reply(AskProductNameMessage)
		case "2":
			session.State = models.StateSearchSupplies
			t.reply(AskSupplySearchMessage)
		case "3":
			session.State = models.StateInitial
			t.reply(WelcomeMessage)
		default:
			t.reply(FarmerMenuMessage)
		}

	case models.StateAddProductName:
		if text == "" {
			t.reply(AskProductNameMessage)
			return
		}
		session.Draft = &models.DraftProduct{Name: text}
		session.State = models.StateAddProductQty
		t.reply(AskQuantityMessage)

	case models.StateAddProductQty:
		qty, ok := parseQuantity(text)
		if !ok || session.Draft == nil {
			t.reply(InvalidQuantityMessage)
			return
		}
		session.Draft.QuantityAvailable = &qty
		session.State = models.StateAddProductPrice
		t.reply(AskPriceMessage)

	case models.StateAddProductPrice:
		price, ok := parsePrice(text)
		if !ok || session.Draft == nil {
			t.reply(InvalidPriceMessage)
			return
		}
		session.Draft.PricePerUnit = &price
		session.State = models.StateAddProductDesc
		t.reply(AskDescriptionMessage)

	case models.StateAddProductDesc:
		if session.Draft != nil {
			session.Draft.Description = text
		}
		e.saveProduct(t, session.Draft)
		session.Draft = nil
		session.State = models.StateFarmerMenu

	case models.StateSearchSupplies:
		e.searchSupplies(t, text)
		session.State = models.StateFarmerMenu
		t.reply(ReturnToMenuMessage)

	case models.StateVendorMenu:
		switch input {
		case "1":
			e.listProducts(t)
			t.reply(VendorMenuMessage)
		case "2":
			session.State = models.StateInitial
			t.reply(WelcomeMessage)
		default:
			t.reply(VendorMenuMessage)
		}

	default:
		t.reply(NotUnderstoodMessage)
	}
}

func (e *ConversationEngine) saveProduct(t *turn, draft *models.DraftProduct) {
	if !draft.Complete() {
		t.log.Warn("product draft incomplete, not saving")
		t.reply(ProductSaveFailedMessage)
		t.reply(FarmerMenuMessage)
		return
	}

	product := &models.Product{
		FarmerID:          e.farmerID,
		Name:              draft.Name,
		QuantityAvailable: *draft.QuantityAvailable,
		PricePerUnit:      *draft.PricePerUnit,
		Description:       draft.Description,
		Unit:              models.DefaultUnit,
		Status:            models.ProductStatusAvailable,
	}
	err := e.catalog.InsertProduct(t.ctx, product)
	e.metrics.ObserveCatalog("insert_product", err)
	if err != nil {
		t.log.Error("error saving product", zap.Error(err))
		t.reply(ProductSaveFailedMessage)
	} else {
		t.log.Info("product listed over WhatsApp", zap.String("product_id", product.ID))
		t.reply(ProductSavedMessage(product.Name))
	}
	t.reply(FarmerMenuMessage)
}

func (e *ConversationEngine) searchSupplies(t *turn, term string) {
	supplies, err := e.catalog.SearchSupplies(t.ctx, term)
	e.metrics.ObserveCatalog("search_supplies", err)
	if err != nil {
		t.log.Error("error searching supplies", zap.String("term", term), zap.Error(err))
		t.reply(SupplySearchFailedMessage)
		return
	}
	t.reply(FormatSupplies(term, supplies))
}

func (e *ConversationEngine) listProducts(t *turn) {
	products, err := e.catalog.SearchAvailableProducts(t.ctx)
	e.metrics.ObserveCatalog("search_products", err)
	if err != nil {
		t.log.Error("error fetching products", zap.Error(err))
		t.reply(ProductSearchFailedMessage)
		return
	}
	t.reply(FormatProducts(products))
}

func isGreeting(input string) bool {
	switch input {
	case "hi", "hello", "menu":
		return true
	}
	return false
}

// parseQuantity accepts whole positive numbers only.
func parseQuantity(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// parsePrice accepts positive finite decimals.
func parsePrice(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0, false
	}
	return f, true
}
