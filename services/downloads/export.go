package downloads

import (
	"context"
	"fmt"

	"github.com/anBertoli/snap-share/pkg/store"
)

// Public interface for the downloads service. A user asks the owner of a picture to
// receive it, the owner approves or denies and, when approved, the picture is delivered
// to the requestor through a DeliveryChannel.
type Service interface {
	Request(ctx context.Context, galleryID, pictureID int64) (store.DownloadRequest, error)
	Decide(ctx context.Context, requestID int64, approve bool) (Decision, error)
	ListPending(ctx context.Context) ([]store.DownloadRequest, error)
}

// States of a decided request.
const (
	StateDelivered      = "delivered"
	StateDenied         = "denied"
	StateDeliveryFailed = "delivery_failed"
)

// Decision is the outcome of a decided request. The request itself is gone from the
// store once decided. Err is set only when the state is StateDeliveryFailed.
type Decision struct {
	Request store.DownloadRequest `json:"request"`
	State   string                `json:"state"`
	Err     *DeliveryError        `json:"-"`
}

// Delivery carries everything a channel needs to hand a picture over.
type Delivery struct {
	Recipient store.User
	Owner     store.User
	Gallery   store.Gallery
	Picture   store.Picture
}

// A DeliveryChannel sends an approved picture to its requestor, e.g. by email.
type DeliveryChannel interface {
	Deliver(ctx context.Context, delivery Delivery) error
}

// DeliveryError reports a failed delivery of an approved request.
type DeliveryError struct {
	RequestID int64
	Err       error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery of download request %d: %v", e.RequestID, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

var ErrDownloadNotFound = fmt.Errorf("download request %w", store.ErrRecordNotFound)

// This checks makes sure that all service implementation remain
// valid while we refactor our code.
var _ Service = &DownloadsService{}
var _ Service = &AuthMiddleware{}
var _ Service = &MetricsMiddleware{}
