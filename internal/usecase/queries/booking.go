package queries

import (
	"context"

	"studio-booking/internal/domain/booking"
	"studio-booking/internal/infra"
	"studio-booking/internal/pkg/errs"
	"studio-booking/internal/usecase/commands"
	"studio-booking/internal/usecase/readmodel"

	"github.com/google/uuid"
)

// BookingReader is the read surface of the booking repository.
type BookingReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error)
	List(ctx context.Context, status *booking.Status) ([]*booking.Booking, error)
	Search(ctx context.Context, q string) ([]*booking.Booking, error)
}

type BookingQueries interface {
	GetByID(ctx context.Context, id uuid.UUID) (*readmodel.BookingView, error)
	List(ctx context.Context, status *booking.Status) ([]*readmodel.BookingView, error)
	Search(ctx context.Context, q string) ([]*readmodel.BookingView, error)
}

type bookingQueriesImpl struct {
	reader BookingReader
}

func NewBookingQueries(reader BookingReader) BookingQueries {
	return &bookingQueriesImpl{reader: reader}
}

func (q *bookingQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*readmodel.BookingView, error) {
	b, err := q.reader.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, commands.ErrBookingNotFound
		}
		return nil, errs.Mark(err, commands.ErrDatabaseOperationFailed)
	}
	return readmodel.BookingViewFromEntity(b), nil
}

func (q *bookingQueriesImpl) List(ctx context.Context, status *booking.Status) ([]*readmodel.BookingView, error) {
	bs, err := q.reader.List(ctx, status)
	if err != nil {
		return nil, errs.Mark(err, commands.ErrDatabaseOperationFailed)
	}
	return toViews(bs), nil
}

func (q *bookingQueriesImpl) Search(ctx context.Context, query string) ([]*readmodel.BookingView, error) {
	bs, err := q.reader.Search(ctx, query)
	if err != nil {
		return nil, errs.Mark(err, commands.ErrDatabaseOperationFailed)
	}
	return toViews(bs), nil
}

func toViews(bs []*booking.Booking) []*readmodel.BookingView {
	views := make([]*readmodel.BookingView, len(bs))
	for i, b := range bs {
		views[i] = readmodel.BookingViewFromEntity(b)
	}
	return views
}
