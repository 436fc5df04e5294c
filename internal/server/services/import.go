package services

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/boardingpass/internal/common"
	"github.com/dmitrijs2005/boardingpass/internal/dbx"
	"github.com/dmitrijs2005/boardingpass/internal/server/models"
	"github.com/dmitrijs2005/boardingpass/internal/server/repositories/repomanager"
)

// ImportStats summarises an allow-list import.
type ImportStats struct {
	Created int
	Updated int
}

// ParseMembersCSV reads "twitter,discord,project" rows. A header row with
// those names is skipped, a leading "@" on Twitter handles is dropped and
// blank lines are ignored. Every row needs at least one handle.
func ParseMembersCSV(r io.Reader) ([]models.Member, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var out []models.Member
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}

		field := func(i int) string {
			if i < len(rec) {
				return strings.TrimSpace(rec[i])
			}
			return ""
		}

		m := models.Member{
			Twitter: strings.TrimPrefix(field(0), "@"),
			Discord: field(1),
			Project: field(2),
		}

		if line == 1 && strings.EqualFold(m.Twitter, "twitter") && strings.EqualFold(m.Discord, "discord") {
			continue
		}
		if m.Twitter == "" && m.Discord == "" {
			if len(rec) == 1 && field(0) == "" {
				continue
			}
			return nil, fmt.Errorf("%w: line %d has no handle", common.ErrorValidation, line)
		}
		out = append(out, m)
	}
}

// ImportMembers upserts rows in one transaction. Rows match existing members
// by either handle; a match keeps its ids and address.
func ImportMembers(ctx context.Context, db *sql.DB, m repomanager.RepositoryManager, rows []models.Member) (ImportStats, error) {
	var stats ImportStats

	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := m.Members(tx)
		for i := range rows {
			row := rows[i]

			existing, err := repo.FindByHandles(ctx, row.Twitter, row.Discord)
			switch {
			case errors.Is(err, common.ErrorNotFound):
				if err := repo.Create(ctx, &row); err != nil {
					return fmt.Errorf("create %s/%s: %w", row.Twitter, row.Discord, err)
				}
				stats.Created++
				continue
			case err != nil:
				return fmt.Errorf("find %s/%s: %w", row.Twitter, row.Discord, err)
			}

			if row.Twitter != "" {
				existing.Twitter = row.Twitter
			}
			if row.Discord != "" {
				existing.Discord = row.Discord
			}
			if row.Project != "" {
				existing.Project = row.Project
			}
			if err := repo.UpdateHandles(ctx, existing); err != nil {
				return fmt.Errorf("update %s: %w", existing.ID, err)
			}
			stats.Updated++
		}
		return nil
	})
	if err != nil {
		return ImportStats{}, err
	}
	return stats, nil
}
