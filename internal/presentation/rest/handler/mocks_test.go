package handler

import (
	"context"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	pmapp "afs-bridge/internal/application/payment_method"
	terminalapp "afs-bridge/internal/application/terminal"
	"afs-bridge/internal/domain/payment_method"
	"afs-bridge/internal/domain/terminal_payment"
	"afs-bridge/internal/infrastructure/afs"
	"afs-bridge/internal/infrastructure/afs/xmltree"
	"afs-bridge/internal/infrastructure/config"
	otelinfra "afs-bridge/internal/infrastructure/observability/otel"
	restmiddleware "afs-bridge/internal/presentation/rest/middleware"
)

// MockPaymentMethodRepository モックPaymentMethodリポジトリ
type MockPaymentMethodRepository struct {
	mock.Mock
}

func (m *MockPaymentMethodRepository) Save(ctx context.Context, pm *payment_method.PaymentMethod) error {
	args := m.Called(ctx, pm)
	return args.Error(0)
}

func (m *MockPaymentMethodRepository) FindByID(ctx context.Context, id string) (*payment_method.PaymentMethod, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment_method.PaymentMethod), args.Error(1)
}

// MockTerminalPaymentRepository モックTerminalPaymentリポジトリ
type MockTerminalPaymentRepository struct {
	mock.Mock
}

func (m *MockTerminalPaymentRepository) Save(ctx context.Context, tp *terminal_payment.TerminalPayment) error {
	args := m.Called(ctx, tp)
	return args.Error(0)
}

func (m *MockTerminalPaymentRepository) FindByPaymentID(ctx context.Context, paymentID string) (*terminal_payment.TerminalPayment, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*terminal_payment.TerminalPayment), args.Error(1)
}

func (m *MockTerminalPaymentRepository) FindByAFSTransactionID(ctx context.Context, afsTransactionID string) (*terminal_payment.TerminalPayment, error) {
	args := m.Called(ctx, afsTransactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*terminal_payment.TerminalPayment), args.Error(1)
}

// MockGateway モックAFSゲートウェイ
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) SendSale(ctx context.Context, amount, invoiceNumber string) *afs.Result {
	args := m.Called(ctx, amount, invoiceNumber)
	return args.Get(0).(*afs.Result)
}

func (m *MockGateway) SendEnquiry(ctx context.Context, referenceNumber string) *afs.Result {
	args := m.Called(ctx, referenceNumber)
	return args.Get(0).(*afs.Result)
}

func (m *MockGateway) SendCancellation(ctx context.Context) *afs.Result {
	args := m.Called(ctx)
	return args.Get(0).(*afs.Result)
}

// terminalResult 端末レスポンスのResultを作成
func terminalResult(op afs.Operation, posRespText, webResponseStatus string) *afs.Result {
	el := xmltree.NewElement()
	el.Set(afs.FieldPosRespText, xmltree.Text(posRespText))
	el.Set(afs.FieldWebResponseStatus, xmltree.Text(webResponseStatus))
	return &afs.Result{Operation: op, Data: el, StatusCode: 200}
}

func configuredMethod(t *testing.T) *payment_method.PaymentMethod {
	t.Helper()
	pm, err := payment_method.NewPaymentMethod("pm-1", "AFS Counter")
	require.NoError(t, err)
	pm.ConfigureTerminal("T0001", "M0001", "cashier", "Cashier")
	pm.SetSecureKey("secret")
	return pm
}

// terminalFixture TerminalHandlerのテスト用の依存一式
type terminalFixture struct {
	echo     *echo.Echo
	methods  *MockPaymentMethodRepository
	payments *MockTerminalPaymentRepository
	gateway  *MockGateway
}

func newTerminalFixture(t *testing.T) *terminalFixture {
	t.Helper()
	metrics, err := otelinfra.NewMetrics("test")
	require.NoError(t, err)
	logger := otelinfra.NewNopLogger()

	f := &terminalFixture{
		echo:     echo.New(),
		methods:  new(MockPaymentMethodRepository),
		payments: new(MockTerminalPaymentRepository),
		gateway:  new(MockGateway),
	}

	service := terminalapp.NewTerminalApplicationService(
		f.methods,
		f.payments,
		func(afs.Credentials) terminalapp.Gateway { return f.gateway },
		&config.AFSConfig{ServiceURL: "https://afs.example/Ecr.svc"},
		logger,
		metrics,
	)
	h := NewTerminalHandler(service)

	f.echo.Use(restmiddleware.ErrorHandlerMiddleware(logger))
	// 認証ミドルウェアの代わりにオペレーターIDを設定
	f.echo.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(restmiddleware.OperatorIDKey, "cashier-01")
			return next(c)
		}
	})

	g := f.echo.Group("/api/v1/terminal/afs")
	g.POST("/payments", h.MakePayment)
	g.POST("/payments/status", h.FetchPaymentStatus)
	g.POST("/payments/cancel", h.CancelPayment)
	g.GET("/payments/:payment_id", h.GetPayment)
	return f
}

func (f *terminalFixture) assertExpectations(t *testing.T) {
	f.methods.AssertExpectations(t)
	f.payments.AssertExpectations(t)
	f.gateway.AssertExpectations(t)
}

func newPaymentMethodHandlerForTest(repo *MockPaymentMethodRepository) (*echo.Echo, *PaymentMethodHandler) {
	logger := otelinfra.NewNopLogger()
	e := echo.New()
	e.Use(restmiddleware.ErrorHandlerMiddleware(logger))
	return e, NewPaymentMethodHandler(pmapp.NewPaymentMethodApplicationService(repo, logger))
}
