package commands

import (
	"context"
	"errors"

	"buyback/internal/core/application/recordstore"
	"buyback/internal/core/domain/model/kernel"
	"buyback/internal/core/domain/model/order"
	"buyback/internal/core/domain/model/tracking"
	"buyback/internal/core/domain/services"
	"buyback/internal/core/ports"
	"buyback/internal/pkg/errs"
	"buyback/internal/pkg/metrics"
	"buyback/internal/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// NotificationStatusChanged is the kind of notification emitted when a
// refresh moves an order into a customer-facing milestone.
const NotificationStatusChanged = "order_status_changed"

// notifiable are the statuses a refresh announces, each at most once per order.
var notifiable = map[order.Status]struct{}{
	order.KitDelivered:  {},
	order.PhoneOnTheWay: {},
	order.DeliveredToUs: {},
}

// RefreshTrackingResult is what a refresh reports back. On failure Status
// and PreviousStatus both hold the untouched stored status.
type RefreshTrackingResult struct {
	OrderID        int64
	Status         string
	PreviousStatus string
	Changed        bool
	Direction      tracking.Leg
	Delivered      bool
	Provider       string
}

// RefreshTrackingCommandHandler fetches tracking for an order's active leg
// and commits the resulting transition.
//
// The provider call happens before any write. If it fails the order is left
// exactly as it was. A transient or failed answer from the primary provider
// is retried once against the fallback provider when one is configured.
type RefreshTrackingCommandHandler struct {
	store    RecordStore
	resolver services.DirectionResolver
	engine   services.TransitionEngine
	primary  ports.TrackingProvider
	fallback ports.TrackingProvider
	notifier ports.Notifier
	clock    kernel.Clock
	logger   *zap.Logger
}

// NewRefreshTrackingCommandHandler wires the handler. fallback and notifier
// may be nil.
func NewRefreshTrackingCommandHandler(
	store RecordStore,
	resolver services.DirectionResolver,
	engine services.TransitionEngine,
	primary ports.TrackingProvider,
	fallback ports.TrackingProvider,
	notifier ports.Notifier,
	clock kernel.Clock,
	logger *zap.Logger,
) RefreshTrackingCommandHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return RefreshTrackingCommandHandler{
		store:    store,
		resolver: resolver,
		engine:   engine,
		primary:  primary,
		fallback: fallback,
		notifier: notifier,
		clock:    clock,
		logger:   logger.With(zap.String("component", "refresh_tracking")),
	}
}

func (h *RefreshTrackingCommandHandler) Handle(ctx context.Context, cmd RefreshTrackingCommand) (RefreshTrackingResult, error) {
	if err := cmd.Validate(); err != nil {
		return RefreshTrackingResult{}, err
	}

	ctx, span := tracing.Tracer("buyback/commands").Start(ctx, "RefreshTracking")
	defer span.End()
	span.SetAttributes(attribute.Int64("order.id", cmd.OrderID()))

	res, err := h.refresh(ctx, cmd.OrderID())
	switch {
	case err != nil:
		metrics.TrackingRefreshTotal.WithLabelValues("error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case res.Changed:
		metrics.TrackingRefreshTotal.WithLabelValues("changed").Inc()
	default:
		metrics.TrackingRefreshTotal.WithLabelValues("unchanged").Inc()
	}
	return res, err
}

func (h *RefreshTrackingCommandHandler) refresh(ctx context.Context, orderID int64) (RefreshTrackingResult, error) {
	current, err := h.store.Get(ctx, orderID)
	if err != nil {
		return RefreshTrackingResult{OrderID: orderID}, err
	}
	res := RefreshTrackingResult{
		OrderID:        orderID,
		Status:         current.RawStatus(),
		PreviousStatus: current.RawStatus(),
	}

	direction, err := h.resolver.Resolve(current)
	if err != nil {
		return res, err
	}
	res.Direction = direction.Leg

	response, provider, err := h.track(ctx, orderID, ports.TrackRequest{
		TrackingNumber: direction.TrackingNumber,
		CarrierCode:    direction.CarrierCode,
	})
	if err != nil {
		return res, err
	}
	res.Provider = provider

	obs := services.Observation{
		Direction:      direction,
		Provider:       provider,
		Classification: tracking.Classify(response),
	}
	res.Delivered = obs.Classification.Delivered

	var (
		applied  services.Transition
		announce bool
		previous string
	)
	updated, err := h.store.Mutate(ctx, orderID, func(o *order.Order) (order.Fields, []order.ActivityLogEntry, error) {
		now := h.clock.Now()
		t := h.engine.Next(o, obs, now)

		_, wanted := notifiable[t.To]
		announce = t.Changed && wanted && !o.WasNotified(t.To)
		if announce {
			t.Fields[order.KeyNotifiedStatuses+"."+string(t.To)] = kernel.FormatTimestamp(now)
		}
		applied = t
		previous = o.RawStatus()
		return t.Fields, t.LogEntries, nil
	}, recordstore.SuppressStatusLog())
	if err != nil {
		return res, err
	}

	res.PreviousStatus = previous
	res.Status = updated.RawStatus()
	res.Changed = applied.Changed

	if applied.Changed {
		h.logger.Info("tracking moved order",
			zap.Int64("order_id", orderID),
			zap.String("leg", string(direction.Leg)),
			zap.String("from", previous),
			zap.String("to", string(applied.To)))
	}
	if announce {
		h.notify(ctx, updated, applied.To)
	}
	return res, nil
}

// track asks the primary provider and, on a provider error, the fallback.
// Missing credentials on the primary are a configuration fault and are not
// retried.
func (h *RefreshTrackingCommandHandler) track(
	ctx context.Context,
	orderID int64,
	req ports.TrackRequest,
) (tracking.Response, string, error) {
	if h.primary == nil {
		return tracking.Response{}, "", errs.NewCredentialsMissingError("tracking", "TRACKING_PRIMARY_API_KEY")
	}

	response, err := h.primary.Track(ctx, req)
	if err == nil {
		return response, h.primary.Name(), nil
	}
	if h.fallback == nil || !isProviderError(err) || ctx.Err() != nil {
		return tracking.Response{}, h.primary.Name(), err
	}

	metrics.ProviderFallbacksTotal.Inc()
	h.logger.Warn("primary tracking provider failed, trying fallback",
		zap.Int64("order_id", orderID),
		zap.String("provider", h.primary.Name()),
		zap.String("fallback", h.fallback.Name()),
		zap.Error(err))

	response, fallbackErr := h.fallback.Track(ctx, req)
	if fallbackErr != nil {
		return tracking.Response{}, h.fallback.Name(), errors.Join(err, fallbackErr)
	}
	return response, h.fallback.Name(), nil
}

func isProviderError(err error) bool {
	return errors.Is(err, errs.ErrProviderTransient) || errors.Is(err, errs.ErrProviderFailed)
}

// notify is at most once: the marker was committed with the transition, so a
// failed send is logged and never repeated.
func (h *RefreshTrackingCommandHandler) notify(ctx context.Context, o *order.Order, status order.Status) {
	if h.notifier == nil {
		return
	}
	n := ports.Notification{
		Kind:       NotificationStatusChanged,
		OrderID:    o.ID(),
		CustomerID: o.CustomerID(),
		Status:     string(status),
		Data: map[string]any{
			"shippingPreference": string(o.ShippingPreference()),
		},
	}
	if snapshot, ok := o.TrackingSnapshot(); ok {
		n.Data["trackingNumber"] = snapshot.TrackingNumber
		n.Data["carrierCode"] = snapshot.CarrierCode
		n.Data["direction"] = string(snapshot.Direction)
	}

	if err := h.notifier.Notify(ctx, n); err != nil {
		metrics.NotificationsTotal.WithLabelValues(n.Kind, "error").Inc()
		h.logger.Error("notification failed",
			zap.Int64("order_id", o.ID()),
			zap.String("status", n.Status),
			zap.Error(err))
		return
	}
	metrics.NotificationsTotal.WithLabelValues(n.Kind, "sent").Inc()
}
