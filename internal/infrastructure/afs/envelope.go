package afs

import (
	"bytes"
	"encoding/xml"
	"strings"
	"text/template"
)

// Operation AFS EcrComInterface の操作
type Operation string

const (
	OperationSale         Operation = "Sale"
	OperationEnquiry      Operation = "EnquiryByRef"
	OperationCancellation Operation = "RequestCancellation"
)

const (
	soapActionPrefix = "http://tempuri.org/IEcrComInterface/"

	// EcrCurrencyCode 端末に送る固定の通貨コード（ISO 4217 数値コード）
	EcrCurrencyCode = "512"
	// EcrTillerFullName 端末に送る固定のオペレーター氏名
	EcrTillerFullName = "Python"
	// EcrTillerUserName 端末に送る固定のオペレーターユーザー名
	EcrTillerUserName = "flan"

	printerWidth = "40"
)

// SOAPAction SOAPActionヘッダー値を返す
func (o Operation) SOAPAction() string {
	return soapActionPrefix + string(o)
}

// ResultTag レスポンスから取り出す結果要素名を返す
func (o Operation) ResultTag() string {
	switch o {
	case OperationSale:
		return "SaleResult"
	case OperationEnquiry:
		return "EnquiryResult"
	case OperationCancellation:
		return "RequestCancellationResult"
	default:
		return string(o) + "Result"
	}
}

// envelopeData エンベロープの描画に使う値
type envelopeData struct {
	Operation Operation
	Config    configBlock
	Sale      *saleBlock
	Reference string
}

type configBlock struct {
	CurrencyCode string
	FullName     string
	UserName     string
	SecureKey    string
	MID          string
	TID          string
}

type saleBlock struct {
	Amount        string
	InvoiceNumber string
}

var envelopeTemplate = template.Must(template.New("envelope").Funcs(template.FuncMap{
	"x": escapeXML,
}).Parse(`<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/" xmlns:tem="http://tempuri.org/">
  <soapenv:Header/>
  <soapenv:Body>
    <tem:{{.Operation}}>
      <tem:webReq xmlns:a="http://schemas.datacontract.org/2004/07/">
        <a:Config>
          <a:EcrCurrencyCode>{{x .Config.CurrencyCode}}</a:EcrCurrencyCode>
          <a:EcrTillerFullName>{{x .Config.FullName}}</a:EcrTillerFullName>
          <a:EcrTillerUserName>{{x .Config.UserName}}</a:EcrTillerUserName>
          <a:MerchantSecureKey>{{x .Config.SecureKey}}</a:MerchantSecureKey>
          <a:Mid>{{x .Config.MID}}</a:Mid>
          <a:Tid>{{x .Config.TID}}</a:Tid>
        </a:Config>
{{- with .Sale}}
        <a:EcrAmount>{{x .Amount}}</a:EcrAmount>
        <a:InvoiceNumber>{{x .InvoiceNumber}}</a:InvoiceNumber>
        <a:PanEncrypted></a:PanEncrypted>
        <a:Printer>
          <a:EnablePrintPosReceipt>1</a:EnablePrintPosReceipt>
          <a:EnablePrintReceiptNote>1</a:EnablePrintReceiptNote>
          <a:InvoiceNumber>{{x .InvoiceNumber}}</a:InvoiceNumber>
          <a:PrinterWidth>` + printerWidth + `</a:PrinterWidth>
          <a:ReceiptNote></a:ReceiptNote>
          <a:ReferenceNumber>{{x .InvoiceNumber}}</a:ReferenceNumber>
        </a:Printer>
        <a:TransactionType>SALE</a:TransactionType>
        <a:AuthCode></a:AuthCode>
{{- end}}
{{- if eq .Operation "EnquiryByRef"}}
        <a:Printer>
          <a:ReferenceNumber>{{x .Reference}}</a:ReferenceNumber>
        </a:Printer>
{{- end}}
      </tem:webReq>
    </tem:{{.Operation}}>
  </soapenv:Body>
</soapenv:Envelope>`))

// escapeXML 文字データとして値をエスケープする
// 英数字や "-" "." などはそのまま残るため、金額や請求書番号は書き換わらない
func escapeXML(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

// renderEnvelope SOAPエンベロープを描画
func renderEnvelope(data envelopeData) ([]byte, error) {
	var buf bytes.Buffer
	if err := envelopeTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func newConfigBlock(creds Credentials) configBlock {
	return configBlock{
		CurrencyCode: EcrCurrencyCode,
		FullName:     EcrTillerFullName,
		UserName:     EcrTillerUserName,
		SecureKey:    creds.SecureKey,
		MID:          creds.MID,
		TID:          creds.TID,
	}
}

func saleEnvelope(creds Credentials, amount, invoiceNumber string) envelopeData {
	return envelopeData{
		Operation: OperationSale,
		Config:    newConfigBlock(creds),
		Sale:      &saleBlock{Amount: amount, InvoiceNumber: invoiceNumber},
	}
}

func enquiryEnvelope(creds Credentials, referenceNumber string) envelopeData {
	return envelopeData{
		Operation: OperationEnquiry,
		Config:    newConfigBlock(creds),
		Reference: referenceNumber,
	}
}

func cancellationEnvelope(creds Credentials) envelopeData {
	return envelopeData{
		Operation: OperationCancellation,
		Config:    newConfigBlock(creds),
	}
}
