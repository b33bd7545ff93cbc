// chatctl is a small operator CLI for a running server: it fetches
// /debug/stats and renders the counters as a table.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"

	"talksy/observability"
)

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Base URL of the server")
	watch := flag.Duration("watch", 0, "Refresh interval (0 runs once)")
	flag.Parse()

	client := &http.Client{Timeout: 5 * time.Second}

	for {
		snapshot, err := fetchStats(client, *baseURL)
		if err != nil {
			log.Fatal("Error while fetching stats: ", err)
		}
		render(snapshot)

		if *watch <= 0 {
			return
		}
		time.Sleep(*watch)
	}
}

func fetchStats(client *http.Client, baseURL string) (observability.Snapshot, error) {
	var snapshot observability.Snapshot

	response, err := client.Get(baseURL + "/debug/stats")
	if err != nil {
		return snapshot, err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return snapshot, fmt.Errorf("unexpected status %s", response.Status)
	}
	err = json.NewDecoder(response.Body).Decode(&snapshot)
	return snapshot, err
}

func render(snapshot observability.Snapshot) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Metric", "Value"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	rows := [][]string{
		{"Open connections", strconv.FormatInt(snapshot.OpenConnections, 10)},
		{"Online users", strconv.Itoa(snapshot.OnlineUsers)},
		{"Delivered events", strconv.FormatUint(snapshot.DeliveredEvents, 10)},
		{"Dropped events", strconv.FormatUint(snapshot.DroppedEvents, 10)},
		{"Presence broadcasts", strconv.FormatUint(snapshot.PresenceBroadcasts, 10)},
		{"Alloc (MB)", strconv.FormatUint(snapshot.AllocMemMb, 10)},
		{"GC cycles", strconv.FormatUint(uint64(snapshot.NumGC), 10)},
	}
	for _, row := range rows {
		name := row[0]
		if row[0] == "Dropped events" && row[1] != "0" {
			name = color.New(color.FgRed).Render(name)
		}
		table.Append([]string{name, row[1]})
	}

	fmt.Println(color.New(color.FgGreen).Render("Live stats " + time.Now().Format(time.TimeOnly)))
	table.Render()
}
