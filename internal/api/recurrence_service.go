package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

const RecurrenceServiceName = "billsplit.v1.RecurrenceService"

const (
	RecurrenceServiceInstantiateTemplateProcedure = "/billsplit.v1.RecurrenceService/InstantiateTemplate"
	RecurrenceServiceSweepRecurringProcedure      = "/billsplit.v1.RecurrenceService/SweepRecurring"
)

type RecurrenceServiceHandler interface {
	InstantiateTemplate(context.Context, *connect.Request[InstantiateTemplateRequest]) (*connect.Response[InstantiateTemplateResponse], error)
	SweepRecurring(context.Context, *connect.Request[SweepRecurringRequest]) (*connect.Response[SweepRecurringResponse], error)
}

func NewRecurrenceServiceHandler(svc RecurrenceServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(RecurrenceServiceInstantiateTemplateProcedure, connect.NewUnaryHandler(RecurrenceServiceInstantiateTemplateProcedure, svc.InstantiateTemplate, opts...))
	mux.Handle(RecurrenceServiceSweepRecurringProcedure, connect.NewUnaryHandler(RecurrenceServiceSweepRecurringProcedure, svc.SweepRecurring, opts...))
	return "/" + RecurrenceServiceName + "/", mux
}

type RecurrenceServiceClient struct {
	instantiateTemplate *connect.Client[InstantiateTemplateRequest, InstantiateTemplateResponse]
	sweepRecurring      *connect.Client[SweepRecurringRequest, SweepRecurringResponse]
}

func NewRecurrenceServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *RecurrenceServiceClient {
	opts = clientOptions(opts)
	return &RecurrenceServiceClient{
		instantiateTemplate: connect.NewClient[InstantiateTemplateRequest, InstantiateTemplateResponse](httpClient, baseURL+RecurrenceServiceInstantiateTemplateProcedure, opts...),
		sweepRecurring:      connect.NewClient[SweepRecurringRequest, SweepRecurringResponse](httpClient, baseURL+RecurrenceServiceSweepRecurringProcedure, opts...),
	}
}

func (c *RecurrenceServiceClient) InstantiateTemplate(ctx context.Context, req *connect.Request[InstantiateTemplateRequest]) (*connect.Response[InstantiateTemplateResponse], error) {
	return c.instantiateTemplate.CallUnary(ctx, req)
}

func (c *RecurrenceServiceClient) SweepRecurring(ctx context.Context, req *connect.Request[SweepRecurringRequest]) (*connect.Response[SweepRecurringResponse], error) {
	return c.sweepRecurring.CallUnary(ctx, req)
}
