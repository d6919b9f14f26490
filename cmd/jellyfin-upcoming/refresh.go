package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/damianolombardo/sensor.jellyfin-upcoming-media/internal/domain"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Run one refresh cycle and print sensor states",
	Long: `Run one refresh cycle: discover libraries, fetch the latest items,
write artwork and update the snapshot store. Fails if 'serve' is
running against the same config directory.`,
	RunE: runRefresh,
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}

func runRefresh(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	lock, err := acquireLock(a.cfg.LockPath())
	if err != nil {
		return err
	}
	defer lock.Unlock()

	report, err := a.platform.RefreshAll(cmd.Context())
	if err != nil {
		return err
	}

	if jsonOutput {
		states := make([]domain.SensorSnapshot, 0, len(report.Results))
		for _, s := range a.platform.Sensors() {
			states = append(states, s.Snapshot())
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(states); err != nil {
			return err
		}
	} else {
		rows := make([][]string, 0, len(report.Results))
		for _, res := range report.Results {
			errText := ""
			if res.Err != nil {
				errText = res.Err.Error()
			}
			rows = append(rows, []string{res.EntityID, res.State, strconv.Itoa(res.Items), errText})
		}
		fmt.Println(renderTable([]column{
			{title: "Entity"},
			{title: "State", state: true},
			{title: "Items", align: text.AlignRight},
			{title: "Error"},
		}, rows))
		fmt.Printf("Cycle %s finished in %s\n", report.ID, report.Finished.Sub(report.Started).Round(time.Millisecond))
	}

	if failed := report.Failed(); failed > 0 {
		return fmt.Errorf("%d of %d sensors failed to refresh", failed, len(report.Results))
	}
	return nil
}
