package eda

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/apache/arrow-go/v18/arrow/csv"
	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"

	"github.com/VALASALARAKESH/Zeotap-eCommerce-Transactions-Dataset/dataset"
)

// The fixed insight commentary of the EDA report, one paragraph per chart.
var insights = []string{
	"1. Seasonal Revenue Trends: Monthly revenue peaks during festive months, highlighting a need for targeted promotional campaigns during holidays.",
	"2. Regional Revenue Contributions: A small set of regions leads total revenue, while the rest show potential for growth.",
	"3. Top Product Categories: A few categories contribute the majority of revenue, underscoring their dominance in sales.",
	"4. Product Demand Analysis: The top products by quantity sold suggest high demand for staples, with potential for bundling.",
	"5. Product Performance: The best sellers account for a disproportionate share of sales volume.",
	"6. Customer Lifetime Value: A small percentage of customers contributes a large portion of revenue, suggesting a focus on retention.",
	"7. Average Order Value: Most customers have moderate spending, with opportunities for upselling and cross-selling.",
	"8. Revenue by Signup Year: Recently acquired customers contribute significantly to revenue.",
	"9. Transaction Count Distribution: A few high-frequency buyers drive a significant portion of sales.",
	"10. Revenue by Customer Type: Customer types contribute variably to revenue, suggesting tailored marketing per segment.",
}

// Artifacts lists the files a Run produced.
type Artifacts struct {
	PDF       string
	MergedCSV string
	Images    []string
}

// Run renders the full EDA report over the merged transactions table:
// the merged CSV export, the ten insight charts, and the compiled PDF.
// Individual chart failures are logged and the chart skipped.
func Run(full *dataset.Table, outDir string, logger *zap.Logger) (*Artifacts, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}

	art := &Artifacts{
		PDF:       filepath.Join(outDir, "EDA_Report.pdf"),
		MergedCSV: filepath.Join(outDir, "Merged_Data.csv"),
	}
	if err := writeMergedCSV(full, art.MergedCSV); err != nil {
		return nil, err
	}

	type chart struct {
		title  string
		file   string
		render func(path string) error
	}

	charts := []chart{
		{"Monthly Revenue Trend", "monthly_revenue_trend.png", func(p string) error {
			s, err := monthlyRevenue(full)
			if err != nil {
				return err
			}
			return lineChart(s, "Monthly Revenue Trend", "Month", "Revenue", p)
		}},
		{"Revenue by Region", "revenue_by_region.png", func(p string) error {
			s, err := groupSum(full, "Region", "TotalValue")
			if err != nil {
				return err
			}
			return barChart(s, "Revenue by Region", "Region", "Revenue", p)
		}},
		{"Revenue by Product Category", "revenue_by_category.png", func(p string) error {
			s, err := groupSum(full, "Category", "TotalValue")
			if err != nil {
				return err
			}
			return barChart(s, "Revenue by Product Category", "Category", "Revenue", p)
		}},
		{"Top-Selling Products by Quantity", "top_selling_products_by_quantity.png", func(p string) error {
			s, err := groupSumInt(full, "ProductName", "Quantity")
			if err != nil {
				return err
			}
			return barChart(s.topN(10), "Top-Selling Products by Quantity", "Product Name", "Quantity Sold", p)
		}},
		{"Top-Selling Products", "top_selling_products.png", func(p string) error {
			s, err := groupSum(full, "ProductName", "TotalValue")
			if err != nil {
				return err
			}
			return barChart(s.topN(10), "Top-Selling Products", "Product Name", "Revenue", p)
		}},
		{"Customer Lifetime Value Distribution", "customer_lifetime_value.png", func(p string) error {
			v, err := perCustomer(full, false)
			if err != nil {
				return err
			}
			return histogram(v, 30, "Customer Lifetime Value Distribution", "Lifetime Value", p)
		}},
		{"Average Order Value Distribution", "average_order_value.png", func(p string) error {
			v, err := perCustomer(full, true)
			if err != nil {
				return err
			}
			return histogram(v, 30, "Average Order Value Distribution", "Average Order Value", p)
		}},
		{"Revenue by Signup Year", "revenue_by_signup_year.png", func(p string) error {
			s, err := signupYearRevenue(full)
			if err != nil {
				return err
			}
			return barChart(s, "Revenue by Signup Year", "Signup Year", "Revenue", p)
		}},
		{"Transaction Count Distribution", "transaction_count_distribution.png", func(p string) error {
			v, err := transactionCounts(full)
			if err != nil {
				return err
			}
			return histogram(v, 30, "Transaction Count Distribution", "Transaction Count", p)
		}},
		{"Revenue by Customer Type", "revenue_by_customer_type.png", func(p string) error {
			s, err := groupSum(full, "CustomerType", "TotalValue")
			if err != nil {
				return err
			}
			return barChart(s, "Revenue by Customer Type", "Customer Type", "Revenue", p)
		}},
	}

	type page struct{ title, image string }
	var pages []page
	for _, c := range charts {
		path := filepath.Join(outDir, c.file)
		if err := c.render(path); err != nil {
			logger.Warn("chart rendering failed", zap.String("chart", c.title), zap.Error(err))
			continue
		}
		art.Images = append(art.Images, path)
		pages = append(pages, page{c.title, path})
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(200, 10, "EDA Report: eCommerce Transactions Dataset", "", 1, "C", false, 0, "")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(200, 10, "Business Insights:", "", 1, "L", false, 0, "")
	for _, insight := range insights {
		pdf.Ln(5)
		pdf.MultiCell(0, 10, insight, "", "L", false)
	}
	for _, pg := range pages {
		pdf.AddPage()
		pdf.CellFormat(200, 10, pg.title, "", 1, "C", false, 0, "")
		pdf.ImageOptions(pg.image, 10, 30, 190, 0, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	}
	if err := pdf.OutputFileAndClose(art.PDF); err != nil {
		return nil, fmt.Errorf("eda: write pdf: %w", err)
	}
	return art, nil
}

func writeMergedCSV(full *dataset.Table, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("eda: create %q: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f, full.Schema(), csv.WithHeader(true))
	if err := w.Write(full.Record()); err != nil {
		return fmt.Errorf("eda: write csv: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("eda: flush csv: %w", err)
	}
	return w.Error()
}
