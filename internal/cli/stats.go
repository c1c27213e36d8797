package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/vtimeline/internal/frames"
	"github.com/rcliao/vtimeline/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show database and per-project statistics",
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	stats, err := s.Stats(cmd.Context(), getDBPath())
	if err != nil {
		exitErr("stats", err)
	}

	if formatFlag == "text" {
		writeStatsText(os.Stdout, stats)
		return
	}
	printJSON(stats)
}

func writeStatsText(w io.Writer, st *store.Stats) {
	fmt.Fprintf(w, "%s  %d KiB\n", st.DBPath, st.DBSizeBytes/1024)
	fmt.Fprintf(w, "projects %d  tracks %d  clips %d  history %d\n",
		st.TotalProjects, st.TotalTracks, st.TotalClips, st.HistoryEntries)
	for _, p := range st.Projects {
		fmt.Fprintf(w, "  %s  %-24s  %3d clips  %3d sources  %s\n",
			p.ID, p.Name, p.Clips, p.Sources, frames.Timecode(p.TotalFrames))
	}
}
