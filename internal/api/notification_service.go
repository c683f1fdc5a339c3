package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/billsplit/internal/notify"
)

const NotificationServiceName = "billsplit.v1.NotificationService"

const NotificationServiceWatchProcedure = "/billsplit.v1.NotificationService/Watch"

// NotificationServiceHandler streams a user's events while the call is open.
type NotificationServiceHandler interface {
	Watch(context.Context, *connect.Request[Empty], *connect.ServerStream[notify.Event]) error
}

func NewNotificationServiceHandler(svc NotificationServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(NotificationServiceWatchProcedure, connect.NewServerStreamHandler(NotificationServiceWatchProcedure, svc.Watch, opts...))
	return "/" + NotificationServiceName + "/", mux
}

type NotificationServiceClient struct {
	watch *connect.Client[Empty, notify.Event]
}

func NewNotificationServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *NotificationServiceClient {
	opts = clientOptions(opts)
	return &NotificationServiceClient{
		watch: connect.NewClient[Empty, notify.Event](httpClient, baseURL+NotificationServiceWatchProcedure, opts...),
	}
}

func (c *NotificationServiceClient) Watch(ctx context.Context, req *connect.Request[Empty]) (*connect.ServerStreamForClient[notify.Event], error) {
	return c.watch.CallServerStream(ctx, req)
}
