package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/sjperalta/fintera-coop/internal/models"
	"github.com/sjperalta/fintera-coop/internal/repository"
)

var scheduleColumns = []string{
	"Schedule ID", "Subscription ID", "Member ID", "Period", "Label",
	"Due Date", "Amount", "Paid", "Outstanding", "Status", "Days Overdue",
}

type ExportService struct {
	schedules  *ScheduleService
	ledgerRepo repository.LedgerRepository
	coopRepo   repository.CooperativeRepository
	perms      *PermissionService
	now        func() time.Time
}

func NewExportService(schedules *ScheduleService, ledgerRepo repository.LedgerRepository, coopRepo repository.CooperativeRepository, perms *PermissionService) *ExportService {
	return &ExportService{
		schedules:  schedules,
		ledgerRepo: ledgerRepo,
		coopRepo:   coopRepo,
		perms:      perms,
		now:        time.Now,
	}
}

func (s *ExportService) scheduleRows(ctx context.Context, scope ScheduleScope, actorID uint) ([]models.ScheduleResponse, error) {
	all := repository.NewListQuery()
	all.PerPage = 0
	rows, _, err := s.schedules.ListSchedules(ctx, scope, all, actorID)
	return rows, err
}

func scheduleRecord(r models.ScheduleResponse) []string {
	return []string{
		strconv.FormatUint(uint64(r.ID), 10),
		strconv.FormatUint(uint64(r.SubscriptionID), 10),
		strconv.FormatUint(uint64(r.MemberID), 10),
		strconv.Itoa(r.PeriodNumber),
		r.PeriodLabel,
		r.DueDate.Format("2006-01-02"),
		fmt.Sprintf("%.2f", r.Amount),
		fmt.Sprintf("%.2f", r.PaidAmount),
		fmt.Sprintf("%.2f", r.Outstanding),
		r.Status,
		strconv.Itoa(r.DaysOverdue),
	}
}

// ScheduleCSV exports the rows in scope as CSV
func (s *ExportService) ScheduleCSV(ctx context.Context, scope ScheduleScope, actorID uint) ([]byte, string, error) {
	rows, err := s.scheduleRows(ctx, scope, actorID)
	if err != nil {
		return nil, "", err
	}

	buf := new(bytes.Buffer)
	writer := csv.NewWriter(buf)
	_ = writer.Write(scheduleColumns)
	for _, r := range rows {
		_ = writer.Write(scheduleRecord(r))
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("schedules_%s.csv", s.now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

// ScheduleWorkbook exports the rows in scope as an XLSX workbook with a
// totals row
func (s *ExportService) ScheduleWorkbook(ctx context.Context, scope ScheduleScope, actorID uint) ([]byte, string, error) {
	rows, err := s.scheduleRows(ctx, scope, actorID)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Schedules"
	_ = f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	moneyStyle, _ := f.NewStyle(&excelize.Style{NumFmt: 4})
	overdueStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Color: "#C00000"}})

	for i, title := range scheduleColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, title)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(scheduleColumns))
	_ = f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle)

	var totalAmount, totalPaid, totalOutstanding float64
	for i, r := range rows {
		line := i + 2
		values := []interface{}{
			r.ID, r.SubscriptionID, r.MemberID, r.PeriodNumber, r.PeriodLabel,
			r.DueDate.Format("2006-01-02"), r.Amount, r.PaidAmount, r.Outstanding,
			r.Status, r.DaysOverdue,
		}
		start, _ := excelize.CoordinatesToCellName(1, line)
		_ = f.SetSheetRow(sheet, start, &values)
		_ = f.SetCellStyle(sheet, fmt.Sprintf("G%d", line), fmt.Sprintf("I%d", line), moneyStyle)
		if r.IsOverdue {
			_ = f.SetCellStyle(sheet, fmt.Sprintf("J%d", line), fmt.Sprintf("K%d", line), overdueStyle)
		}
		totalAmount += r.Amount
		totalPaid += r.PaidAmount
		totalOutstanding += r.Outstanding
	}

	totalLine := len(rows) + 2
	_ = f.SetCellValue(sheet, fmt.Sprintf("F%d", totalLine), "Total")
	_ = f.SetCellValue(sheet, fmt.Sprintf("G%d", totalLine), totalAmount)
	_ = f.SetCellValue(sheet, fmt.Sprintf("H%d", totalLine), totalPaid)
	_ = f.SetCellValue(sheet, fmt.Sprintf("I%d", totalLine), totalOutstanding)
	_ = f.SetCellStyle(sheet, fmt.Sprintf("F%d", totalLine), fmt.Sprintf("I%d", totalLine), headerStyle)
	_ = f.SetColWidth(sheet, "E", "F", 16)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("schedules_%s.xlsx", s.now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

// MemberStatementPDF renders a member's ledger and current balance. Members
// may print their own statement; others need view_all.
func (s *ExportService) MemberStatementPDF(ctx context.Context, cooperativeID, memberID, actorID uint) ([]byte, string, error) {
	actor, err := s.perms.Membership(ctx, cooperativeID, actorID)
	if err != nil {
		return nil, "", err
	}
	if memberID != actorID && !s.perms.Allows(actor, PermViewAll) {
		return nil, "", permissionError(PermViewAll)
	}

	coop, err := s.coopRepo.FindByID(ctx, cooperativeID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", notFoundError("cooperative", cooperativeID)
	}
	if err != nil {
		return nil, "", err
	}
	member, err := s.coopRepo.FindMember(ctx, cooperativeID, memberID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", notFoundError("member", memberID)
	}
	if err != nil {
		return nil, "", err
	}

	all := repository.NewListQuery()
	all.PerPage = 0
	entries, _, err := s.ledgerRepo.FindByMember(ctx, cooperativeID, memberID, all)
	if err != nil {
		return nil, "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, tr(coop.Name))
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, "Contribution Statement")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	name := member.FullName
	if name == "" {
		name = fmt.Sprintf("Member #%d", member.MemberID)
	}
	pdf.Cell(40, 6, "Member:")
	pdf.Cell(0, 6, tr(name))
	pdf.Ln(6)
	pdf.Cell(40, 6, "Issued:")
	pdf.Cell(0, 6, s.now().Format("2006-01-02"))
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(224, 224, 224)
	widths := []float64{28, 82, 35, 35}
	for i, h := range []string{"Date", "Description", "Amount", "Balance"} {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, e := range entries {
		pdf.CellFormat(widths[0], 6, e.CreatedAt.Format("2006-01-02"), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, tr(e.Description), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, formatMoney(e.Amount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 6, formatMoney(e.BalanceAfter), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(40, 8, "Balance:")
	pdf.Cell(0, 8, fmt.Sprintf("%s %s", formatMoney(member.Balance), coop.Currency))
	pdf.Ln(7)
	pdf.SetFont("Arial", "I", 9)
	pdf.MultiCell(0, 5, AmountInWords(member.Balance, coop.Currency), "", "L", false)

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("statement_%d_%s.pdf", memberID, s.now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}
