package pointsservice

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	pointsdomain "github.com/Black-And-White-Club/poker-points/app/modules/points/domain"
	"github.com/Black-And-White-Club/poker-points/app/shared/results"
	"github.com/xuri/excelize/v2"
)

// ResultRow is one line of an uploaded results sheet.
type ResultRow struct {
	UserID       string
	Rank         *int
	Eliminations int
}

var (
	userHeaders        = []string{"user_id", "user", "player"}
	rankHeaders        = []string{"rank", "place", "position"}
	eliminationHeaders = []string{"eliminations", "knockouts", "kos"}
)

// ParseResultsXLSX reads the first sheet of a workbook. The header row must
// name a user column; rank and eliminations columns are optional. Blank ranks
// mean unranked and blank eliminations mean zero.
func ParseResultsXLSX(data []byte) ([]ResultRow, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("XLSX file has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}

	headerIdx, userCol, rankCol, elimCol := -1, -1, -1, -1
	for i, row := range rows {
		userCol, rankCol, elimCol = findColumn(row, userHeaders), findColumn(row, rankHeaders), findColumn(row, eliminationHeaders)
		if userCol >= 0 {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, fmt.Errorf("no header row with a user column found")
	}

	seen := make(map[string]int)
	var out []ResultRow
	for i := headerIdx + 1; i < len(rows); i++ {
		row := rows[i]
		user := cell(row, userCol)
		if user == "" {
			continue
		}
		if prev, dup := seen[user]; dup {
			return nil, fmt.Errorf("row %d: user %q already listed on row %d", i+1, user, prev)
		}
		seen[user] = i + 1

		r := ResultRow{UserID: user}
		if v := cell(row, rankCol); v != "" {
			rank, err := strconv.Atoi(v)
			if err != nil || rank < 1 {
				return nil, fmt.Errorf("row %d: invalid rank %q", i+1, v)
			}
			r.Rank = &rank
		}
		if v := cell(row, elimCol); v != "" {
			elims, err := strconv.Atoi(v)
			if err != nil || elims < 0 {
				return nil, fmt.Errorf("row %d: invalid eliminations %q", i+1, v)
			}
			r.Eliminations = elims
		}
		out = append(out, r)
	}
	return out, nil
}

func findColumn(row []string, names []string) int {
	for i, c := range row {
		normalized := strings.ToLower(strings.TrimSpace(c))
		for _, n := range names {
			if normalized == n {
				return i
			}
		}
	}
	return -1
}

func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// ImportEventResults scores an event from a results sheet. Users without a
// membership in the season take part in the payout curve but receive no delta.
func (s *PointsService) ImportEventResults(ctx context.Context, req ImportResultsRequest) (*CompletionResult, error) {
	result, err := withTelemetry(s, ctx, "ImportEventResults", strconv.FormatInt(req.EventID, 10), func(ctx context.Context) (results.OperationResult[*CompletionResult, error], error) {
		if req.EventID <= 0 {
			return results.FailureResult[*CompletionResult, error](fmt.Errorf("%w: event id is required", ErrInvalidRequest)), nil
		}
		rows, err := ParseResultsXLSX(req.Sheet)
		if err != nil {
			return results.FailureResult[*CompletionResult, error](fmt.Errorf("%w: %v", ErrInvalidRequest, err)), nil
		}

		season, err := s.resolveSeason(ctx, nil, req.SeasonID)
		if err != nil {
			if isDomainLookupError(err) {
				return results.FailureResult[*CompletionResult, error](err), nil
			}
			return results.OperationResult[*CompletionResult, error]{}, err
		}

		userIDs := make([]string, 0, len(rows))
		for _, r := range rows {
			userIDs = append(userIDs, r.UserID)
		}
		memberships, err := s.repo.FindMembershipsByUsers(ctx, nil, season.ID, userIDs)
		if err != nil {
			return results.OperationResult[*CompletionResult, error]{}, err
		}
		byUser := make(map[string]int64, len(memberships))
		for _, m := range memberships {
			byUser[m.UserID] = m.ID
		}

		event := pointsdomain.EventSnapshot{
			ID:                req.EventID,
			SeasonID:          season.ID,
			ScoringStrategy:   req.ScoringStrategy,
			TotalParticipants: len(rows),
			Participations:    make([]pointsdomain.Participation, 0, len(rows)),
		}
		for _, r := range rows {
			p := pointsdomain.Participation{Rank: r.Rank, Eliminations: r.Eliminations}
			if id, ok := byUser[r.UserID]; ok {
				p.MembershipID = &id
			}
			event.Participations = append(event.Participations, p)
		}

		return s.completeEventLogic(ctx, event)
	})

	out, err := unwrap(result, err)
	s.recordCompletion(ctx, out, err)
	return out, err
}
