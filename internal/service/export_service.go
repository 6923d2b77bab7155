package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/agriclaim/review-api/internal/models"
	appErrors "github.com/agriclaim/review-api/pkg/errors"
	"github.com/agriclaim/review-api/pkg/export"
)

type viewClaimLister interface {
	List(ctx context.Context, filter models.ClaimFilter) ([]models.ViewClaim, error)
}

// ExportFile is a rendered claim listing ready for download.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders the current filtered claim list as CSV or PDF.
type ExportService struct {
	claims viewClaimLister
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	logger *zap.Logger
}

// NewExportService constructs the service.
func NewExportService(claims viewClaimLister, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		claims: claims,
		csv:    export.NewCSVExporter(),
		pdf:    export.NewPDFExporter(),
		logger: logger,
	}
}

var exportHeaders = []string{"Claim ID", "Farmer", "Submitted", "Damage Type", "Status", "Officer Remarks"}

// Export renders claims matching the filter in the requested format. An
// unsupported format fails before any claim query runs.
func (s *ExportService) Export(ctx context.Context, filter models.ClaimFilter, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	switch format {
	case "csv", "pdf":
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	claims, err := s.claims.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{Headers: exportHeaders, Rows: make([][]string, 0, len(claims))}
	for _, claim := range claims {
		dataset.Rows = append(dataset.Rows, []string{
			claim.ID,
			claim.FarmerName,
			claim.SubmittedAt.UTC().Format(time.RFC3339),
			claim.Reason,
			string(claim.Status),
			claim.OfficerRemarks,
		})
	}

	stamp := time.Now().UTC().Format("20060102-150405")
	if format == "csv" {
		data, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render csv export")
		}
		return &ExportFile{
			Filename:    fmt.Sprintf("claims-%s.csv", stamp),
			ContentType: "text/csv",
			Data:        data,
		}, nil
	}

	data, err := s.pdf.Render(dataset, "Claim Review Export")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render pdf export")
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("claims-%s.pdf", stamp),
		ContentType: "application/pdf",
		Data:        data,
	}, nil
}
