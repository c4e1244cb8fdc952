package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/quickshow/quickshow-api/internal/repository"
)

// AdminShowLister returns every upcoming show with its movie and
// occupancy count.
type AdminShowLister interface {
	ListUpcoming(ctx context.Context) ([]repository.ShowListItem, error)
}

// AdminBookingStore exposes the booking queries the admin screens use.
type AdminBookingStore interface {
	ListAll(ctx context.Context) ([]repository.BookingDetail, error)
	Dashboard(ctx context.Context) (repository.DashboardStats, error)
}

type AdminHandler struct {
	Shows    AdminShowLister
	Bookings AdminBookingStore
}

func NewAdminHandler(shows AdminShowLister, bookings AdminBookingStore) *AdminHandler {
	return &AdminHandler{Shows: shows, Bookings: bookings}
}

// IsAdmin confirms the caller passed the admin role gate.
func (h *AdminHandler) IsAdmin(c echo.Context) error {
	return ok(c, http.StatusOK, echo.Map{"isAdmin": true})
}

// AllShows lists every upcoming show for the admin listing screen.
func (h *AdminHandler) AllShows(c echo.Context) error {
	shows, err := h.Shows.ListUpcoming(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "could not load shows")
	}
	return ok(c, http.StatusOK, echo.Map{"shows": shows})
}

// AllBookings lists every booking across all users.
func (h *AdminHandler) AllBookings(c echo.Context) error {
	bookings, err := h.Bookings.ListAll(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "could not load bookings")
	}
	return ok(c, http.StatusOK, echo.Map{"bookings": bookings})
}

// Dashboard aggregates booking totals with the active show list. Only
// paid bookings count toward revenue.
func (h *AdminHandler) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()

	stats, err := h.Bookings.Dashboard(ctx)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "could not load dashboard")
	}
	activeShows, err := h.Shows.ListUpcoming(ctx)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "could not load dashboard")
	}

	return ok(c, http.StatusOK, echo.Map{
		"dashboardData": echo.Map{
			"totalBookings": stats.TotalBookings,
			"totalRevenue":  stats.TotalRevenueCents,
			"totalUser":     stats.TotalUsers,
			"activeShows":   activeShows,
		},
	})
}
