package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/damianolombardo/sensor.jellyfin-upcoming-media/internal/domain"
	"github.com/damianolombardo/sensor.jellyfin-upcoming-media/internal/sensor"
)

var librariesFilter string

var librariesCmd = &cobra.Command{
	Use:   "libraries",
	Short: "List the server's libraries and the sensor each one maps to",
	RunE:  runLibraries,
}

func init() {
	librariesCmd.Flags().StringVarP(&librariesFilter, "filter", "f", "", "Fuzzy filter on library name")
	rootCmd.AddCommand(librariesCmd)
}

// libraryRow is one listed library
type libraryRow struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	CollectionType string `json:"collection_type"`
	EntityID       string `json:"entity_id,omitempty"`
}

func runLibraries(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	categories, err := a.client.ListCategories(cmd.Context())
	if err != nil {
		return fmt.Errorf("%s: %w", a.client.Host(), err)
	}

	rows := libraryRows(categories, sensor.Options{
		Include:        a.cfg.Sensor.Include,
		GroupLibraries: a.cfg.Sensor.GroupLibraries,
	})
	if librariesFilter != "" {
		rows = filterLibraries(rows, librariesFilter)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	table := make([][]string, 0, len(rows))
	for _, r := range rows {
		entity := r.EntityID
		if entity == "" {
			entity = "-"
		}
		table = append(table, []string{r.Name, r.CollectionType, r.ID, entity})
	}
	fmt.Println(renderTable([]column{{title: "Library"}, {title: "Type"}, {title: "ID"}, {title: "Sensor"}}, table))
	return nil
}

// libraryRows pairs every library with the sensor that will cover it
func libraryRows(categories []domain.LibraryCategory, opts sensor.Options) []libraryRow {
	entityByID := make(map[string]string)
	for _, c := range sensor.SelectCategories(categories, opts, nil) {
		label := c.Name
		if c.IsGrouped() {
			label = c.DisplayType()
		}
		for _, id := range c.IDs() {
			entityByID[id] = sensor.EntityID(label)
		}
	}

	rows := make([]libraryRow, 0, len(categories))
	for _, c := range categories {
		rows = append(rows, libraryRow{
			ID:             c.ID,
			Name:           c.Name,
			CollectionType: c.CollectionType,
			EntityID:       entityByID[c.ID],
		})
	}
	return rows
}

// filterLibraries keeps rows whose name fuzzy-matches query, best first
func filterLibraries(rows []libraryRow, query string) []libraryRow {
	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = strings.ToLower(r.Name)
	}

	matches := fuzzy.Find(strings.ToLower(query), names)
	filtered := make([]libraryRow, 0, len(matches))
	for _, m := range matches {
		filtered = append(filtered, rows[m.Index])
	}
	return filtered
}
