package afs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"afs-bridge/internal/infrastructure/afs/xmltree"
	otelinfra "afs-bridge/internal/infrastructure/observability/otel"
)

const approvedSale = `<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/"><s:Body><SaleResponse xmlns="http://tempuri.org/"><SaleResult xmlns:a="http://schemas.datacontract.org/2004/07/"><a:PosRespText>APPROVAL 001234</a:PosRespText><a:WebResponseStatus>Success</a:WebResponseStatus></SaleResult></SaleResponse></s:Body></s:Envelope>`

const pendingEnquiry = `<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/"><s:Body><EnquiryByRefResponse xmlns="http://tempuri.org/"><EnquiryResult xmlns:a="http://schemas.datacontract.org/2004/07/"><a:PosRespText>PENDING</a:PosRespText><a:WebResponseStatus>Waiting</a:WebResponseStatus></EnquiryResult></EnquiryByRefResponse></s:Body></s:Envelope>`

const cancelAccepted = `<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/"><s:Body><RequestCancellationResponse xmlns="http://tempuri.org/"><RequestCancellationResult xmlns:a="http://schemas.datacontract.org/2004/07/"><a:PosRespText>CANCELLED</a:PosRespText><a:WebResponseStatus>Success</a:WebResponseStatus></RequestCancellationResult></RequestCancellationResponse></s:Body></s:Envelope>`

var testCreds = Credentials{
	TID:       "T0001",
	MID:       "M0001",
	SecureKey: "s3cr3t-key",
}

// recorder 受信したリクエストを記録するテスト用エンドポイント
type recorder struct {
	mu       sync.Mutex
	bodies   [][]byte
	headers  []http.Header
	status   int
	response string
}

func (r *recorder) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	body, _ := io.ReadAll(req.Body)

	r.mu.Lock()
	r.bodies = append(r.bodies, body)
	r.headers = append(r.headers, req.Header.Clone())
	status, response := r.status, r.response
	r.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(response))
}

func (r *recorder) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bodies)
}

func newTestClient(t *testing.T, rec *recorder) *Client {
	t.Helper()
	server := httptest.NewServer(rec)
	t.Cleanup(server.Close)

	creds := testCreds
	creds.ServiceURL = server.URL
	return NewClient(creds, WithHTTPClient(server.Client()))
}

func TestClient_SendSale(t *testing.T) {
	rec := &recorder{response: approvedSale}
	client := newTestClient(t, rec)

	result := client.SendSale(context.Background(), "10.500", "INV-1")

	require.False(t, result.IsError(), result.Message())
	require.Equal(t, 1, rec.calls())

	header := rec.headers[0]
	assert.Equal(t, "text/xml; charset=utf-8", header.Get("Content-Type"))
	assert.Equal(t, "http://tempuri.org/IEcrComInterface/Sale", header.Get("SOAPAction"))

	body := string(rec.bodies[0])
	assert.Contains(t, body, "<a:EcrAmount>10.500</a:EcrAmount>")
	assert.Equal(t, 2, strings.Count(body, "<a:InvoiceNumber>INV-1</a:InvoiceNumber>"))
	assert.Contains(t, body, "<a:ReferenceNumber>INV-1</a:ReferenceNumber>")
	assert.Contains(t, body, "<a:EcrCurrencyCode>512</a:EcrCurrencyCode>")
	assert.Contains(t, body, "<a:EcrTillerFullName>Python</a:EcrTillerFullName>")
	assert.Contains(t, body, "<a:EcrTillerUserName>flan</a:EcrTillerUserName>")
	assert.Contains(t, body, "<a:TransactionType>SALE</a:TransactionType>")
	assert.Contains(t, body, "<a:PrinterWidth>40</a:PrinterWidth>")

	pos, ok := result.Field(FieldPosRespText)
	assert.True(t, ok)
	assert.Equal(t, "APPROVAL 001234", pos)
	assert.True(t, result.FieldContains(FieldWebResponseStatus, "Success"))
}

func TestClient_SendSale_EnvelopeIsWellFormed(t *testing.T) {
	rec := &recorder{response: approvedSale}
	client := newTestClient(t, rec)

	client.SendSale(context.Background(), "1.250", "INV-9")
	require.Equal(t, 1, rec.calls())

	node, err := xmltree.Normalize(rec.bodies[0], "webReq")
	require.NoError(t, err)

	got := xmltree.ToMap(node).(map[string]interface{})
	assert.Equal(t, map[string]interface{}{
		"EcrCurrencyCode":   "512",
		"EcrTillerFullName": "Python",
		"EcrTillerUserName": "flan",
		"MerchantSecureKey": "s3cr3t-key",
		"Mid":               "M0001",
		"Tid":               "T0001",
	}, got["Config"])
	assert.Equal(t, "1.250", got["EcrAmount"])
	assert.Equal(t, "INV-9", got["InvoiceNumber"])
	assert.Equal(t, "", got["PanEncrypted"])
	assert.Equal(t, "", got["AuthCode"])

	printer := got["Printer"].(map[string]interface{})
	assert.Equal(t, "INV-9", printer["InvoiceNumber"])
	assert.Equal(t, "INV-9", printer["ReferenceNumber"])
	assert.Equal(t, "1", printer["EnablePrintPosReceipt"])
	assert.Equal(t, "1", printer["EnablePrintReceiptNote"])
	assert.Equal(t, "", printer["ReceiptNote"])
}

func TestClient_SendEnquiry(t *testing.T) {
	rec := &recorder{response: pendingEnquiry}
	client := newTestClient(t, rec)

	first := client.SendEnquiry(context.Background(), "PAY-1")
	second := client.SendEnquiry(context.Background(), "PAY-1")
	other := client.SendEnquiry(context.Background(), "PAY-2")

	require.False(t, first.IsError(), first.Message())
	require.False(t, second.IsError())
	require.False(t, other.IsError())
	require.Equal(t, 3, rec.calls())

	assert.Equal(t, "http://tempuri.org/IEcrComInterface/EnquiryByRef", rec.headers[0].Get("SOAPAction"))

	// 同じ参照番号なら同一のボディ、異なる参照番号でも差し替え箇所以外は同一
	assert.Equal(t, rec.bodies[0], rec.bodies[1])
	assert.Equal(t, rec.bodies[0], bytes.ReplaceAll(rec.bodies[2], []byte("PAY-2"), []byte("PAY-1")))

	body := string(rec.bodies[0])
	assert.Contains(t, body, "<a:ReferenceNumber>PAY-1</a:ReferenceNumber>")
	assert.NotContains(t, body, "EcrAmount")
	assert.NotContains(t, body, "TransactionType")

	assert.Equal(t, map[string]interface{}{
		"PosRespText":       "PENDING",
		"WebResponseStatus": "Waiting",
	}, first.Map())
}

func TestClient_ConcurrentCalls(t *testing.T) {
	rec := &recorder{response: pendingEnquiry}
	client := newTestClient(t, rec)

	const workers = 24
	results := make([]*Result, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ref := fmt.Sprintf("PAY-%02d", i)
			switch i % 3 {
			case 0:
				results[i] = client.SendSale(context.Background(), "1.000", ref)
			case 1:
				results[i] = client.SendEnquiry(context.Background(), ref)
			default:
				results[i] = client.SendCancellation(context.Background())
			}
		}(i)
	}
	wg.Wait()

	require.Equal(t, workers, rec.calls())
	for i, result := range results {
		require.NotNil(t, result, "worker %d", i)
		assert.False(t, result.IsError(), "worker %d: %s", i, result.Message())
	}

	// 各ボディには自分の参照番号だけが含まれる
	seen := make(map[string]int)
	for _, body := range rec.bodies {
		node, err := xmltree.Normalize(body, "webReq")
		require.NoError(t, err)
		got := xmltree.ToMap(node).(map[string]interface{})
		printer, ok := got["Printer"].(map[string]interface{})
		if !ok {
			assert.NotContains(t, string(body), "PAY-")
			continue
		}
		ref := printer["ReferenceNumber"].(string)
		seen[ref]++
		assert.Equal(t, strings.Count(string(body), "PAY-"), strings.Count(string(body), ref), "body for %s", ref)
		if invoice, ok := got["InvoiceNumber"]; ok {
			assert.Equal(t, ref, invoice)
		}
	}

	for i := 0; i < workers; i++ {
		ref := fmt.Sprintf("PAY-%02d", i)
		if i%3 == 2 {
			assert.Zero(t, seen[ref])
			continue
		}
		assert.Equal(t, 1, seen[ref], ref)
	}
}

func TestClient_SendCancellation(t *testing.T) {
	rec := &recorder{response: cancelAccepted}
	client := newTestClient(t, rec)

	result := client.SendCancellation(context.Background())

	require.False(t, result.IsError(), result.Message())
	assert.Equal(t, "http://tempuri.org/IEcrComInterface/RequestCancellation", rec.headers[0].Get("SOAPAction"))

	body := string(rec.bodies[0])
	assert.Contains(t, body, "<tem:RequestCancellation>")
	assert.Contains(t, body, "<a:Mid>M0001</a:Mid>")
	assert.NotContains(t, body, "Printer")
	assert.True(t, result.FieldContains(FieldWebResponseStatus, "Success"))
}

func TestClient_ErrorShapes(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		response     string
		wantErr      error
		wantPrefix   string
		wantResponse bool
	}{
		{
			name:         "異常系: HTTP 500",
			status:       http.StatusInternalServerError,
			response:     "<fault>boom</fault>",
			wantErr:      ErrHTTPStatus,
			wantPrefix:   "HTTP Error: 500",
			wantResponse: true,
		},
		{
			name:         "異常系: HTTP 404",
			status:       http.StatusNotFound,
			response:     "not here",
			wantErr:      ErrHTTPStatus,
			wantPrefix:   "HTTP Error: 404",
			wantResponse: true,
		},
		{
			name:       "異常系: XMLとして解析できない",
			status:     http.StatusOK,
			response:   "<Envelope><Body>",
			wantErr:    ErrXMLParse,
			wantPrefix: "XML Parse Error: ",
		},
		{
			name:       "異常系: 結果要素が見つからない",
			status:     http.StatusOK,
			response:   "<Envelope><Header/></Envelope>",
			wantErr:    ErrResultNotFound,
			wantPrefix: "Could not find 'SaleResult' or a valid response body in the XML.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{status: tt.status, response: tt.response}
			client := newTestClient(t, rec)

			result := client.SendSale(context.Background(), "5.000", "INV-2")

			require.True(t, result.IsError())
			assert.True(t, errors.Is(result.Err, tt.wantErr))
			assert.True(t, strings.HasPrefix(result.Message(), tt.wantPrefix), result.Message())

			status, ok := result.Field(KeyStatus)
			assert.True(t, ok)
			assert.Equal(t, StatusError, status)
			assert.False(t, result.FieldContains(FieldPosRespText, "APPROVAL"))

			value := result.Map()
			assert.Equal(t, StatusError, value[KeyStatus])
			assert.Equal(t, result.Message(), value[KeyMessage])
			if tt.wantResponse {
				assert.Equal(t, tt.response, value[KeyResponse])
			} else {
				assert.NotContains(t, value, KeyResponse)
			}
		})
	}
}

func TestClient_TransportErrorIsUnified(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	creds := testCreds
	creds.ServiceURL = url
	client := NewClient(creds)

	ctx := context.Background()
	results := map[string]*Result{
		"Sale":                client.SendSale(ctx, "1.000", "INV-3"),
		"EnquiryByRef":        client.SendEnquiry(ctx, "INV-3"),
		"RequestCancellation": client.SendCancellation(ctx),
	}

	for name, result := range results {
		t.Run(name, func(t *testing.T) {
			require.True(t, result.IsError())
			assert.True(t, errors.Is(result.Err, ErrTransport))
			assert.True(t, strings.HasPrefix(result.Message(), "Network Error: "), result.Message())
			assert.Equal(t, map[string]interface{}{
				KeyStatus:  StatusError,
				KeyMessage: result.Message(),
			}, result.Value())
		})
	}
}

func TestClient_VerifiesServerCertificate(t *testing.T) {
	rec := &recorder{response: approvedSale}
	server := httptest.NewTLSServer(rec)
	defer server.Close()

	creds := testCreds
	creds.ServiceURL = server.URL

	// 既定のクライアントは自己署名証明書を拒否する
	result := NewClient(creds).SendSale(context.Background(), "1.000", "INV-4")
	require.True(t, result.IsError())
	assert.True(t, errors.Is(result.Err, ErrTransport))
	assert.Equal(t, 0, rec.calls())

	// 証明書を信頼するクライアントなら成功する
	result = NewClient(creds, WithHTTPClient(server.Client())).SendSale(context.Background(), "1.000", "INV-4")
	require.False(t, result.IsError(), result.Message())
	assert.Equal(t, 1, rec.calls())
}

func TestClient_EscapesCredentialValues(t *testing.T) {
	rec := &recorder{response: approvedSale}
	server := httptest.NewServer(rec)
	defer server.Close()

	client := NewClient(Credentials{
		ServiceURL: server.URL,
		TID:        "T<1>",
		MID:        "M&1",
		SecureKey:  "key",
	})
	client.SendCancellation(context.Background())

	require.Equal(t, 1, rec.calls())
	body := string(rec.bodies[0])
	assert.Contains(t, body, "<a:Tid>T&lt;1&gt;</a:Tid>")
	assert.Contains(t, body, "<a:Mid>M&amp;1</a:Mid>")
}

func TestClient_DoesNotLogSecureKey(t *testing.T) {
	rec := &recorder{status: http.StatusBadGateway, response: "upstream down"}
	server := httptest.NewServer(rec)
	defer server.Close()

	var buf bytes.Buffer
	logger := otelinfra.NewLoggerWithWriter(noop.NewTracerProvider().Tracer("test"), &buf).WithLevel(otelinfra.LogLevelDebug)

	creds := testCreds
	creds.ServiceURL = server.URL
	client := NewClient(creds, WithLogger(logger))

	client.SendSale(context.Background(), "2.000", "INV-5")
	client.SendEnquiry(context.Background(), "INV-5")

	assert.NotEmpty(t, buf.String())
	assert.Contains(t, buf.String(), "AFS terminal call failed")
	assert.NotContains(t, buf.String(), testCreds.SecureKey)
}

func TestNewClient_DefaultServiceURL(t *testing.T) {
	client := NewClient(Credentials{TID: "T", MID: "M", SecureKey: "K"})
	assert.Equal(t, DefaultServiceURL, client.ServiceURL())
}

func TestOperation(t *testing.T) {
	tests := []struct {
		name       string
		op         Operation
		wantAction string
		wantTag    string
	}{
		{name: "正常系: Sale", op: OperationSale, wantAction: "http://tempuri.org/IEcrComInterface/Sale", wantTag: "SaleResult"},
		{name: "正常系: EnquiryByRef", op: OperationEnquiry, wantAction: "http://tempuri.org/IEcrComInterface/EnquiryByRef", wantTag: "EnquiryResult"},
		{name: "正常系: RequestCancellation", op: OperationCancellation, wantAction: "http://tempuri.org/IEcrComInterface/RequestCancellation", wantTag: "RequestCancellationResult"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantAction, tt.op.SOAPAction())
			assert.Equal(t, tt.wantTag, tt.op.ResultTag())
		})
	}
}
