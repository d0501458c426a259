package report

import (
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"

	"github.com/VALASALARAKESH/Zeotap-eCommerce-Transactions-Dataset/cluster"
	"github.com/VALASALARAKESH/Zeotap-eCommerce-Transactions-Dataset/evaluate"
)

// Page is one image page of the compiled report.
type Page struct {
	Title string
	Image string
}

// SummaryLines formats the textual metric summary, one line per algorithm in
// roster order. Failed algorithms report their error; single-cluster
// Davies-Bouldin outcomes report "not computable". Silhouette lines are
// simply absent when the score was not computed.
func SummaryLines(results []cluster.Result, scores map[string]evaluate.Score) []string {
	var lines []string
	for _, res := range results {
		if res.Err != nil {
			lines = append(lines, fmt.Sprintf("%s - failed: %v", res.Name, res.Err))
			continue
		}
		score := scores[res.Name]
		if math.IsInf(score.DaviesBouldin, 1) {
			lines = append(lines, fmt.Sprintf("%s - Davies-Bouldin Index: not computable", res.Name))
		} else {
			lines = append(lines, fmt.Sprintf("%s - Davies-Bouldin Index: %.4f", res.Name, score.DaviesBouldin))
		}
		if score.SilhouetteOK {
			lines = append(lines, fmt.Sprintf("%s - Silhouette Score: %.4f", res.Name, score.Silhouette))
		}
	}
	return lines
}

// BuildPDF assembles the compiled report: a summary page followed by one
// page per image, in the given order.
func BuildPDF(title string, summary []string, pages []Page, path string) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(200, 10, title, "", 1, "C", false, 0, "")
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 10)
	for _, line := range summary {
		pdf.CellFormat(200, 10, line, "", 1, "L", false, 0, "")
	}

	for _, page := range pages {
		pdf.AddPage()
		pdf.CellFormat(200, 10, page.Title, "", 1, "C", false, 0, "")
		pdf.ImageOptions(page.Image, 10, 30, 190, 0, false,
			fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	}
	return pdf.OutputFileAndClose(path)
}
