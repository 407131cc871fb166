package httpx

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ariefcatur/go-storefront/internal/auth"
	kafkax "github.com/ariefcatur/go-storefront/internal/kafka"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/ariefcatur/go-storefront/internal/redisx"
	"github.com/ariefcatur/go-storefront/pkg/logkey"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	kafkago "github.com/segmentio/kafka-go"
)

const checkoutTimeout = 5 * time.Second

type updateStatusReq struct {
	Status string `json:"status" validate:"required"`
}

func (s *Server) checkout(w http.ResponseWriter, r *http.Request) {
	userID := claimsFrom(r.Context()).UserID

	// Cancelling the context rolls the transaction back.
	ctx, cancel := context.WithTimeout(r.Context(), checkoutTimeout)
	defer cancel()

	res, err := s.Checkout.Checkout(ctx, userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	env, err := orders.PlacedEvent(s.Service, middleware.GetReqID(r.Context()), userID, res)
	s.publish(r, orders.TopicOrderPlaced, userID, env, err)

	ok(w, http.StatusCreated, "Checkout completed successfully!", res)
}

// publish hands a committed change to the event stream. Failures are logged only: the change
// itself has already happened.
func (s *Server) publish(r *http.Request, topic, userID string, env orders.Envelope, buildErr error) {
	if s.Events == nil {
		return
	}
	if buildErr != nil {
		s.logError(r, "build event", buildErr, slog.String(logkey.Topic, topic))
		return
	}
	s.Events.Publish(topic, orders.PartitionKey(userID), kafkax.MustMarshal(env),
		kafkago.Header{Key: "x-event-type", Value: []byte(env.EventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte(fmt.Sprint(env.EventVersion))},
	)
}

func (s *Server) listMyOrders(w http.ResponseWriter, r *http.Request) {
	views, err := s.Orders.ListByUser(r.Context(), claimsFrom(r.Context()).UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, "Fetch order success!", views)
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	views, err := s.Orders.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, "Fetch order success!", views)
}

// getOrder serves a single order, from the cache when possible. Customers only see their own.
func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	c := claimsFrom(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	v, err := s.orderView(ctx, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if c.Role != auth.RoleAdmin && v.UserID != c.UserID {
		s.writeError(w, r, orders.ErrOrderNotFound)
		return
	}
	ok(w, http.StatusOK, "Fetch single order success!", v)
}

func (s *Server) orderView(ctx context.Context, id string) (orders.OrderView, error) {
	key := fmt.Sprintf(redisx.KeyOrderView, id)
	var v orders.OrderView
	if s.Cache != nil {
		if found, err := redisx.GetJSON(ctx, s.Cache, key, &v); err == nil && found {
			return v, nil
		}
	}
	v, err := s.Orders.Get(ctx, id)
	if err != nil {
		return orders.OrderView{}, err
	}
	if s.Cache != nil {
		_ = redisx.SetJSON(ctx, s.Cache, key, v, redisx.TTLOrderView)
	}
	return v, nil
}

func (s *Server) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusReq
	if !s.decode(w, r, &req) {
		return
	}
	to, err := orders.ParseStatus(req.Status)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	o, err := s.Orders.UpdateStatus(r.Context(), chi.URLParam(r, "id"), to, "")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.statusChanged(r, o)
	ok(w, http.StatusOK, fmt.Sprintf("Order [%s] status updated to %q!", o.ID, o.Status), o)
}

func (s *Server) cancelOrder(w http.ResponseWriter, r *http.Request) {
	o, err := s.Orders.Cancel(r.Context(), chi.URLParam(r, "id"), claimsFrom(r.Context()).UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.statusChanged(r, o)
	ok(w, http.StatusOK, fmt.Sprintf("Order [%s] status updated to %q!", o.ID, o.Status), o)
}

func (s *Server) statusChanged(r *http.Request, o orders.Order) {
	if s.Cache != nil {
		if err := s.Cache.Del(r.Context(), fmt.Sprintf(redisx.KeyOrderView, o.ID)).Err(); err != nil {
			s.logError(r, "invalidate order cache", err, slog.String(logkey.OrderID, o.ID))
		}
	}
	env, err := orders.StatusChangedEvent(s.Service, middleware.GetReqID(r.Context()), o)
	s.publish(r, orders.TopicOrderStatus, o.UserID, env, err)
}
