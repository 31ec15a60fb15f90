package pointsservice

import (
	"context"
	"fmt"

	pointsdb "github.com/Black-And-White-Club/poker-points/app/modules/points/infrastructure/repositories"
	"github.com/Black-And-White-Club/poker-points/app/shared/results"
	"github.com/xuri/excelize/v2"
)

const leaderboardSheet = "Leaderboard"

// ExportLeaderboardXLSX renders a season's full standings as a workbook.
// An empty seasonID exports the active season.
func (s *PointsService) ExportLeaderboardXLSX(ctx context.Context, seasonID string) ([]byte, error) {
	result, err := withTelemetry(s, ctx, "ExportLeaderboardXLSX", seasonID, func(ctx context.Context) (results.OperationResult[[]byte, error], error) {
		season, err := s.resolveSeason(ctx, nil, seasonID)
		if err != nil {
			if isDomainLookupError(err) {
				return results.FailureResult[[]byte, error](err), nil
			}
			return results.OperationResult[[]byte, error]{}, err
		}

		filter := pointsdb.StandingsFilter{SeasonID: season.ID}
		standings, err := s.repo.ListStandings(ctx, nil, filter, 0, 0)
		if err != nil {
			return results.OperationResult[[]byte, error]{}, err
		}

		data, err := BuildLeaderboardWorkbook(season.Name, standings)
		if err != nil {
			return results.OperationResult[[]byte, error]{}, err
		}
		return results.SuccessResult[[]byte, error](data), nil
	})
	return unwrap(result, err)
}

// BuildLeaderboardWorkbook writes standings to a single-sheet XLSX file.
func BuildLeaderboardWorkbook(title string, standings []pointsdb.Standing) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), leaderboardSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := f.SetCellValue(leaderboardSheet, "A1", title); err != nil {
		return nil, err
	}
	header := []any{"Rank", "User", "Points", "Rebuys"}
	if err := f.SetSheetRow(leaderboardSheet, "A2", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(leaderboardSheet, "A1", "D2", bold); err != nil {
		return nil, err
	}

	for i, st := range standings {
		cell, err := excelize.CoordinatesToCellName(1, i+3)
		if err != nil {
			return nil, err
		}
		row := []any{i + 1, st.UserID, st.Points, st.Rebuys}
		if err := f.SetSheetRow(leaderboardSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	return buf.Bytes(), nil
}
