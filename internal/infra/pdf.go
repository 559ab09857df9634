package infra

// Thermal receipt-style PDF generation using go-pdf/fpdf. Output is an
// A7-ish page (74mm x 105mm, close to receipt paper) with a header, the
// item table, the totals breakdown and the payment capture. The file is
// written to storagePath/receipt_{orderID}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/chathuwa-whiz/zors-pos/internal/model"

	"github.com/go-pdf/fpdf"
)

// GenerateReceiptPDF renders a completed order as a PDF receipt and returns
// the absolute path to the generated file.
func GenerateReceiptPDF(order *model.Order, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("receipt_%s.pdf", order.ID)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 74, Ht: 105},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8 // total margins = 8mm

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, "Zors POS", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Sales Receipt", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, order.Name, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, order.CompletedAt.Format("02/01/2006  15:04"), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	col1 := contentW * 0.52 // product name
	col2 := contentW * 0.16 // qty
	col3 := contentW * 0.32 // subtotal

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Qty", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Subtotal", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	for _, item := range order.Items {
		name := item.Name
		if len(name) > 22 {
			name = name[:21] + "…"
		}
		pdf.CellFormat(col1, 5, name, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, fmt.Sprintf("x%d", item.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, "$"+item.Subtotal.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 7)
	if !order.CouponDiscount.IsZero() {
		pdf.CellFormat(col1+col2, 5, "Coupon:", "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 5, "-$"+order.CouponDiscount.StringFixed(2), "", 1, "R", false, 0, "")
	}
	if !order.DiscountAmount.IsZero() {
		pdf.CellFormat(col1+col2, 5, "Discount:", "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 5, "-$"+order.DiscountAmount.StringFixed(2), "", 1, "R", false, 0, "")
	}
	if !order.TableCharge.IsZero() {
		pdf.CellFormat(col1+col2, 5, "Table charge:", "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 5, "$"+order.TableCharge.StringFixed(2), "", 1, "R", false, 0, "")
	}
	if !order.DeliveryCharge.IsZero() {
		pdf.CellFormat(col1+col2, 5, "Delivery:", "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 5, "$"+order.DeliveryCharge.StringFixed(2), "", 1, "R", false, 0, "")
	}
	if !order.PaymentSurcharge.IsZero() {
		pdf.CellFormat(col1+col2, 5, "Card surcharge:", "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 5, "$"+order.PaymentSurcharge.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1+col2, 6, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, "$"+order.FinalTotal.StringFixed(2), "", 1, "R", false, 0, "")

	pdf.Ln(2)
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(col1+col2, 4, "Paid ("+order.PaymentMethod+"):", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 4, "$"+order.FinalTotal.StringFixed(2), "", 1, "R", false, 0, "")
	if order.CashGiven != nil && order.CashChange != nil {
		pdf.CellFormat(col1+col2, 4, "Cash given:", "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 4, "$"+order.CashGiven.StringFixed(2), "", 1, "R", false, 0, "")
		pdf.CellFormat(col1+col2, 4, "Change:", "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 4, "$"+order.CashChange.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, "Thank you for your purchase!", "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write %s: %w", filePath, err)
	}
	return filePath, nil
}
