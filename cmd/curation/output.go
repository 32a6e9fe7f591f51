package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mkoziy/genome/curation/internal/curation"
	"github.com/mkoziy/genome/curation/internal/models"
)

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

func printKV(rows [][2]string) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, row := range rows {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", row[0], row[1])
	}
	_ = w.Flush()
}

func printTable(headers []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Println("no results")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, strings.Join(headers, "\t"))
	for _, row := range rows {
		_, _ = fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	_ = w.Flush()
}

func refList(refs []curation.Ref) string {
	if len(refs) == 0 {
		return "-"
	}
	parts := make([]string, len(refs))
	for i, r := range refs {
		parts[i] = r.String()
	}
	return strings.Join(parts, ", ")
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04:05")
}

func formatLod(v float64, ok bool) string {
	if !ok {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func printResult(res *curation.Result) {
	rows := [][2]string{{"state", string(res.State)}}
	if res.Family != nil {
		rows = append(rows, [2]string{"family", res.Family.UUID})
		if res.Family.Segregation != nil {
			rows = append(rows, [2]string{"lod", formatLod(res.Family.Segregation.EffectiveLod())})
		}
	}
	if res.Individual != nil {
		rows = append(rows, [2]string{"individual", res.Individual.UUID})
	}
	for _, sc := range res.Scores {
		rows = append(rows, [2]string{"variant_score", sc.UUID + " (" + sc.VariantUUID + ")"})
	}
	rows = append(rows,
		[2]string{"created", refList(res.Created)},
		[2]string{"updated", refList(res.Updated)},
		[2]string{"tombstoned", refList(res.Tombstoned)},
	)
	printKV(rows)
}

func printScores(scores []*models.VariantScore) {
	rows := make([][]string, 0, len(scores))
	for _, sc := range scores {
		title := "-"
		if sc.Variant != nil {
			title = sc.Variant.DisplayTitle()
		}
		rows = append(rows, []string{sc.UUID, sc.VariantUUID, title, string(sc.VariantType), formatTime(sc.CreatedAt)})
	}
	printTable([]string{"UUID", "VARIANT", "TITLE", "TYPE", "CREATED_AT"}, rows)
}

func printAggregate(families []*models.Family) {
	rows := make([][]string, 0, len(families))
	total := 0.0
	for _, f := range families {
		lod, ok := f.Segregation.EffectiveLod()
		if ok {
			total += lod
		}
		rows = append(rows, []string{f.UUID, f.Label, formatLod(lod, ok), string(f.Segregation.SequencingMethod)})
	}
	printTable([]string{"UUID", "LABEL", "LOD", "SEQUENCING"}, rows)
	if len(rows) > 0 {
		fmt.Printf("total LOD: %.2f\n", total)
	}
}
