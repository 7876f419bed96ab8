package service

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/deul428/QA-checklist/internal/qa/entity"
	"github.com/deul428/QA-checklist/internal/qa/repository"
	"github.com/minio/minio-go/v7"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// StatusUnchecked 콘솔 표시용 미점검 상태
const StatusUnchecked = "미점검"

// ConsoleService 콘솔(현황판) 서비스
type ConsoleService struct {
	repos       *repository.Repositories
	minioClient *minio.Client
	bucket      string
	logger      *zap.Logger
}

// NewConsoleService 콘솔 서비스 생성
func NewConsoleService(repos *repository.Repositories, minioClient *minio.Client, bucket string, logger *zap.Logger) *ConsoleService {
	return &ConsoleService{
		repos:       repos,
		minioClient: minioClient,
		bucket:      bucket,
		logger:      logger,
	}
}

// Stats 오늘의 점검 통계
type Stats struct {
	Date        string `json:"date"`
	Environment string `json:"environment,omitempty"`
	Total       int    `json:"total"`
	Pass        int    `json:"pass"`
	Fail        int    `json:"fail"`
	Unchecked   int    `json:"unchecked"`
	Systems     int    `json:"systems"`
}

// expectedKey 점검 대상 단위 (항목 × 환경)
type expectedKey struct {
	itemID string
	env    string
}

// expectedTargets 활성 항목 × 지원 환경의 전체 대상 집합
func (s *ConsoleService) expectedTargets(ctx context.Context, environment string) ([]entity.CheckItem, map[string]entity.System, []expectedKey, error) {
	items, err := s.repos.CheckItem.ListActive(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	systems, err := s.repos.System.List(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	systemByID := make(map[string]entity.System, len(systems))
	for _, sys := range systems {
		systemByID[sys.ID] = sys
	}

	var keys []expectedKey
	for _, item := range items {
		sys, ok := systemByID[item.SystemID]
		if !ok {
			continue
		}
		for _, env := range sys.Environments() {
			if environment != "" && env != environment {
				continue
			}
			keys = append(keys, expectedKey{item.ID, env})
		}
	}
	return items, systemByID, keys, nil
}

// GetStats 오늘의 점검 통계 (환경 필터 선택)
func (s *ConsoleService) GetStats(ctx context.Context, environment string) (*Stats, error) {
	today := TodayKST()

	_, systemByID, keys, err := s.expectedTargets(ctx, environment)
	if err != nil {
		return nil, err
	}

	records, err := s.repos.Checklist.FindByDate(ctx, today, environment)
	if err != nil {
		return nil, err
	}
	statusByKey := make(map[expectedKey]string, len(records))
	for _, r := range records {
		statusByKey[expectedKey{r.CheckItemID, r.Environment}] = r.Status
	}

	stats := &Stats{
		Date:        today,
		Environment: environment,
		Total:       len(keys),
		Systems:     len(systemByID),
	}
	for _, k := range keys {
		switch statusByKey[k] {
		case entity.StatusPass:
			stats.Pass++
		case entity.StatusFail:
			stats.Fail++
		default:
			stats.Unchecked++
		}
	}
	return stats, nil
}

// FailItem 오늘 FAIL이 발생한 항목. 최초 FAIL 시각과 해소 여부는
// 기록 로그를 시간순으로 따라가며 계산한다.
type FailItem struct {
	CheckItemID     string     `json:"check_item_id"`
	CheckItemName   string     `json:"check_item"`
	SystemID        string     `json:"system_id"`
	SystemName      string     `json:"system_name"`
	Environment     string     `json:"environment"`
	EnvironmentName string     `json:"environment_name"`
	FailNotes       string     `json:"fail_notes"`
	FailTime        *time.Time `json:"fail_time"`
	Resolved        bool       `json:"resolved"`
	ResolvedTime    *time.Time `json:"resolved_time"`
	CheckedBy       string     `json:"checked_by"`
}

// failState 항목 × 환경의 당일 FAIL 이력 요약
type failState struct {
	failTime     *time.Time
	resolvedTime *time.Time
	notes        string
	changedBy    string
}

// failStates 오늘의 기록 로그를 시간순으로 따라가며 최초 FAIL 시각과
// 해소 여부를 계산한다. order는 최초 FAIL 발생 순서다.
func (s *ConsoleService) failStates(ctx context.Context, environment string) (map[expectedKey]*failState, []expectedKey, error) {
	logs, err := s.repos.Checklist.FindLogsByDate(ctx, TodayKST(), environment)
	if err != nil {
		return nil, nil, err
	}

	states := make(map[expectedKey]*failState)
	var order []expectedKey

	for i := range logs {
		log := logs[i]
		k := expectedKey{log.CheckItemID, log.Environment}
		st := states[k]
		switch log.NewStatus {
		case entity.StatusFail:
			if st == nil {
				t := log.CreatedAt
				states[k] = &failState{failTime: &t, notes: log.NewNotes, changedBy: log.ChangedBy}
				order = append(order, k)
			} else {
				// 해소 후 재발: 최초 FAIL 시각은 유지하고 해소 표시만 거둔다
				st.resolvedTime = nil
				st.notes = log.NewNotes
				st.changedBy = log.ChangedBy
			}
		case entity.StatusPass:
			if st != nil && st.resolvedTime == nil {
				t := log.CreatedAt
				st.resolvedTime = &t
			}
		}
	}
	return states, order, nil
}

// GetFailItems 오늘 FAIL이 발생한 항목 목록 (해소된 항목 포함)
func (s *ConsoleService) GetFailItems(ctx context.Context, environment string) ([]FailItem, error) {
	states, order, err := s.failStates(ctx, environment)
	if err != nil {
		return nil, err
	}
	if len(order) == 0 {
		return nil, nil
	}

	var itemIDs []string
	seen := make(map[string]bool)
	for _, k := range order {
		if !seen[k.itemID] {
			seen[k.itemID] = true
			itemIDs = append(itemIDs, k.itemID)
		}
	}
	items, err := s.repos.CheckItem.FindByIDs(ctx, itemIDs)
	if err != nil {
		return nil, err
	}
	itemByID := make(map[string]entity.CheckItem, len(items))
	var systemIDs []string
	sysSeen := make(map[string]bool)
	for _, it := range items {
		itemByID[it.ID] = it
		if !sysSeen[it.SystemID] {
			sysSeen[it.SystemID] = true
			systemIDs = append(systemIDs, it.SystemID)
		}
	}
	systems, err := s.repos.System.FindByIDs(ctx, systemIDs)
	if err != nil {
		return nil, err
	}
	systemByID := make(map[string]entity.System, len(systems))
	for _, sys := range systems {
		systemByID[sys.ID] = sys
	}

	var userIDs []string
	userSeen := make(map[string]bool)
	for _, st := range states {
		if !userSeen[st.changedBy] {
			userSeen[st.changedBy] = true
			userIDs = append(userIDs, st.changedBy)
		}
	}
	users, err := s.repos.User.FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	userNameByID := make(map[string]string, len(users))
	for _, u := range users {
		userNameByID[u.ID] = u.Name
	}

	var failItems []FailItem
	for _, k := range order {
		st := states[k]
		item, ok := itemByID[k.itemID]
		if !ok {
			continue
		}
		failItems = append(failItems, FailItem{
			CheckItemID:     item.ID,
			CheckItemName:   item.Name,
			SystemID:        item.SystemID,
			SystemName:      systemByID[item.SystemID].Name,
			Environment:     k.env,
			EnvironmentName: entity.EnvironmentName(k.env),
			FailNotes:       st.notes,
			FailTime:        st.failTime,
			Resolved:        st.resolvedTime != nil,
			ResolvedTime:    st.resolvedTime,
			CheckedBy:       userNameByID[st.changedBy],
		})
	}
	return failItems, nil
}

// AllItemRow 전체 항목 현황 행 (항목 × 지원 환경 단위). 오늘 FAIL이
// 있었던 행은 로그 이력에서 계산한 최초 발생/해소 시각을 함께 담는다.
type AllItemRow struct {
	CheckItemID     string     `json:"check_item_id"`
	CheckItemName   string     `json:"check_item"`
	SystemID        string     `json:"system_id"`
	SystemName      string     `json:"system_name"`
	Environment     string     `json:"environment"`
	EnvironmentName string     `json:"environment_name"`
	Status          string     `json:"status"`
	FailNotes       string     `json:"fail_notes"`
	Assignees       []string   `json:"assignees"`
	CheckedBy       string     `json:"checked_by"`
	CheckedAt       *time.Time `json:"checked_at"`
	FailTime        *time.Time `json:"fail_time"`
	Resolved        bool       `json:"resolved"`
	ResolvedTime    *time.Time `json:"resolved_time"`
}

// GetAllItems 전체 항목의 오늘 현황 (점검되지 않은 항목은 미점검)
func (s *ConsoleService) GetAllItems(ctx context.Context, environment string) ([]AllItemRow, error) {
	today := TodayKST()

	items, systemByID, keys, err := s.expectedTargets(ctx, environment)
	if err != nil {
		return nil, err
	}
	itemByID := make(map[string]entity.CheckItem, len(items))
	for _, it := range items {
		itemByID[it.ID] = it
	}

	records, err := s.repos.Checklist.FindByDate(ctx, today, environment)
	if err != nil {
		return nil, err
	}
	recordByKey := make(map[expectedKey]entity.ChecklistRecord, len(records))
	for _, r := range records {
		recordByKey[expectedKey{r.CheckItemID, r.Environment}] = r
	}

	assignments, err := s.repos.Assignment.List(ctx, "", environment)
	if err != nil {
		return nil, err
	}
	assigneesByKey := make(map[expectedKey][]string)
	for _, a := range assignments {
		if a.User == nil {
			continue
		}
		k := expectedKey{a.CheckItemID, a.Environment}
		assigneesByKey[k] = append(assigneesByKey[k], a.User.Name)
	}

	states, _, err := s.failStates(ctx, environment)
	if err != nil {
		return nil, err
	}

	rows := make([]AllItemRow, 0, len(keys))
	for _, k := range keys {
		item := itemByID[k.itemID]
		row := AllItemRow{
			CheckItemID:     item.ID,
			CheckItemName:   item.Name,
			SystemID:        item.SystemID,
			SystemName:      systemByID[item.SystemID].Name,
			Environment:     k.env,
			EnvironmentName: entity.EnvironmentName(k.env),
			Status:          StatusUnchecked,
			Assignees:       assigneesByKey[k],
		}
		if r, ok := recordByKey[k]; ok {
			row.Status = r.Status
			row.FailNotes = r.FailNotes
			if r.User != nil {
				row.CheckedBy = r.User.Name
			}
			t := r.CheckedAt
			row.CheckedAt = &t
		}
		if st, ok := states[k]; ok {
			row.FailTime = st.failTime
			row.Resolved = st.resolvedTime != nil
			row.ResolvedTime = st.resolvedTime
			// 해소된 행은 기록의 비고가 비어 있으므로 FAIL 당시 사유를 남긴다
			if row.FailNotes == "" {
				row.FailNotes = st.notes
			}
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].SystemName != rows[j].SystemName {
			return rows[i].SystemName < rows[j].SystemName
		}
		if rows[i].CheckItemName != rows[j].CheckItemName {
			return rows[i].CheckItemName < rows[j].CheckItemName
		}
		return rows[i].Environment < rows[j].Environment
	})

	return rows, nil
}

var exportHeaders = []string{"날짜", "시스템", "환경", "점검 항목", "담당자", "상태", "비고"}

// exportRow 엑셀 데이터 시트 한 행
type exportRow struct {
	date       string
	systemName string
	env        string
	itemName   string
	assignees  string
	status     string
	failNotes  string
}

// ExportExcel 기간 [startDate, endDate]의 점검 기록을 xlsx로 생성.
// 데이터 시트(기록이 있는 행만) + 날짜별 통계 시트(막대 차트).
func (s *ConsoleService) ExportExcel(ctx context.Context, startDate, endDate, environment string) (*excelize.File, string, error) {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return nil, "", ErrInvalidDateRange
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return nil, "", ErrInvalidDateRange
	}
	if end.Before(start) {
		return nil, "", ErrInvalidDateRange
	}

	records, err := s.repos.Checklist.FindByDateRange(ctx, startDate, endDate, environment)
	if err != nil {
		return nil, "", err
	}

	items, systemByID, keys, err := s.expectedTargets(ctx, environment)
	if err != nil {
		return nil, "", err
	}
	itemByID := make(map[string]entity.CheckItem, len(items))
	for _, it := range items {
		itemByID[it.ID] = it
	}

	assignments, err := s.repos.Assignment.List(ctx, "", environment)
	if err != nil {
		return nil, "", err
	}
	assigneesByKey := make(map[expectedKey][]string)
	for _, a := range assignments {
		if a.User == nil {
			continue
		}
		k := expectedKey{a.CheckItemID, a.Environment}
		assigneesByKey[k] = append(assigneesByKey[k], a.User.Name)
	}
	for k := range assigneesByKey {
		sort.Strings(assigneesByKey[k])
	}

	// 같은 (항목, 날짜, 환경)에 여러 기록이 있으면 가장 최근 것만 쓴다
	type recordKey struct {
		itemID string
		date   string
		env    string
	}
	latest := make(map[recordKey]entity.ChecklistRecord, len(records))
	for _, r := range records {
		k := recordKey{r.CheckItemID, r.CheckDate, r.Environment}
		if prev, ok := latest[k]; !ok || r.CheckedAt.After(prev.CheckedAt) {
			latest[k] = r
		}
	}

	var rows []exportRow
	dailyStats := make(map[string]*Stats)
	for k, r := range latest {
		item, ok := itemByID[k.itemID]
		if !ok {
			continue
		}
		rows = append(rows, exportRow{
			date:       k.date,
			systemName: systemByID[item.SystemID].Name,
			env:        entity.EnvironmentName(k.env),
			itemName:   item.Name,
			assignees:  joinNames(assigneesByKey[expectedKey{k.itemID, k.env}]),
			status:     r.Status,
			failNotes:  r.FailNotes,
		})

		st := dailyStats[k.date]
		if st == nil {
			st = &Stats{Date: k.date, Total: len(keys)}
			dailyStats[k.date] = st
		}
		switch r.Status {
		case entity.StatusPass:
			st.Pass++
		case entity.StatusFail:
			st.Fail++
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].date != rows[j].date {
			return rows[i].date < rows[j].date
		}
		if rows[i].systemName != rows[j].systemName {
			return rows[i].systemName < rows[j].systemName
		}
		if rows[i].env != rows[j].env {
			return rows[i].env < rows[j].env
		}
		return rows[i].itemName < rows[j].itemName
	})

	f := excelize.NewFile()
	dataSheet := "점검 현황"
	f.SetSheetName("Sheet1", dataSheet)

	boldStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	for i, h := range exportHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(dataSheet, cell, h)
		f.SetCellStyle(dataSheet, cell, cell, boldStyle)
	}

	for rowIdx, row := range rows {
		r := rowIdx + 2
		f.SetCellValue(dataSheet, fmt.Sprintf("A%d", r), row.date)
		f.SetCellValue(dataSheet, fmt.Sprintf("B%d", r), row.systemName)
		f.SetCellValue(dataSheet, fmt.Sprintf("C%d", r), row.env)
		f.SetCellValue(dataSheet, fmt.Sprintf("D%d", r), row.itemName)
		f.SetCellValue(dataSheet, fmt.Sprintf("E%d", r), row.assignees)
		f.SetCellValue(dataSheet, fmt.Sprintf("F%d", r), row.status)
		f.SetCellValue(dataSheet, fmt.Sprintf("G%d", r), row.failNotes)
	}

	colWidths := []float64{12, 20, 10, 36, 20, 10, 36}
	for i, w := range colWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(dataSheet, col, col, w)
	}
	f.AutoFilter(dataSheet, fmt.Sprintf("A1:G%d", len(rows)+1), nil)

	statsSheet := "통계"
	f.NewSheet(statsSheet)
	statsHeaders := []string{"날짜", "PASS", "FAIL", StatusUnchecked, "전체"}
	for i, h := range statsHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(statsSheet, cell, h)
		f.SetCellStyle(statsSheet, cell, cell, boldStyle)
	}

	dates := make([]string, 0, len(dailyStats))
	for date := range dailyStats {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	for i, date := range dates {
		st := dailyStats[date]
		r := i + 2
		f.SetCellValue(statsSheet, fmt.Sprintf("A%d", r), date)
		f.SetCellValue(statsSheet, fmt.Sprintf("B%d", r), st.Pass)
		f.SetCellValue(statsSheet, fmt.Sprintf("C%d", r), st.Fail)
		f.SetCellValue(statsSheet, fmt.Sprintf("D%d", r), st.Total-st.Pass-st.Fail)
		f.SetCellValue(statsSheet, fmt.Sprintf("E%d", r), st.Total)
	}
	f.SetColWidth(statsSheet, "A", "E", 12)

	if len(dates) > 0 {
		chartTitle := fmt.Sprintf("체크리스트 통계 (%s ~ %s)", startDate, endDate)
		lastRow := len(dates) + 1
		if err := f.AddChart(statsSheet, "G2", &excelize.Chart{
			Type: excelize.Col,
			Series: []excelize.ChartSeries{
				{
					Name:       fmt.Sprintf("'%s'!$B$1", statsSheet),
					Categories: fmt.Sprintf("'%s'!$A$2:$A$%d", statsSheet, lastRow),
					Values:     fmt.Sprintf("'%s'!$B$2:$B$%d", statsSheet, lastRow),
				},
				{
					Name:       fmt.Sprintf("'%s'!$C$1", statsSheet),
					Categories: fmt.Sprintf("'%s'!$A$2:$A$%d", statsSheet, lastRow),
					Values:     fmt.Sprintf("'%s'!$C$2:$C$%d", statsSheet, lastRow),
				},
				{
					Name:       fmt.Sprintf("'%s'!$D$1", statsSheet),
					Categories: fmt.Sprintf("'%s'!$A$2:$A$%d", statsSheet, lastRow),
					Values:     fmt.Sprintf("'%s'!$D$2:$D$%d", statsSheet, lastRow),
				},
			},
			Title: []excelize.RichTextRun{{Text: chartTitle}},
		}); err != nil {
			return nil, "", fmt.Errorf("add chart: %w", err)
		}
	}

	filename := fmt.Sprintf("체크리스트_통계_%s_%s.xlsx", startDate, endDate)
	if environment != "" {
		filename = fmt.Sprintf("체크리스트_통계_%s_%s_%s.xlsx", startDate, endDate, environment)
	}

	s.archiveExport(ctx, f, filename)

	return f, filename, nil
}

// archiveExport 생성한 워크북을 MinIO에 보관 (실패해도 내보내기는 계속)
func (s *ConsoleService) archiveExport(ctx context.Context, f *excelize.File, filename string) {
	if s.minioClient == nil || s.bucket == "" {
		return
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		s.logger.Warn("Failed to buffer export for archive", zap.Error(err))
		return
	}
	objectName := fmt.Sprintf("exports/%s/%s", TodayKST(), filename)
	_, err = s.minioClient.PutObject(ctx, s.bucket, objectName,
		bytes.NewReader(buf.Bytes()), int64(buf.Len()),
		minio.PutObjectOptions{
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		})
	if err != nil {
		s.logger.Warn("Failed to archive export to MinIO",
			zap.String("object", objectName),
			zap.Error(err))
		return
	}
	s.logger.Info("Export archived", zap.String("object", objectName))
}

func joinNames(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += ", "
		}
		out += n
	}
	return out
}
