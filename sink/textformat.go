package sink

import (
	"fmt"
	"io"
	"strconv"

	"github.com/joeycumines/go-dprtlib/dependence"
	"github.com/joeycumines/go-dprtlib/lid"
	"github.com/joeycumines/go-dprtlib/mergeoutput"
)

// writeDependenceReport writes one line per sink LID with at least one
// dependence, in the form "<sink_lid> NOM <dep1>|<dep2>|...", where each
// <dep> is "<kind>:<source_lid>:<var>|<aa>".
func writeDependenceReport(w io.Writer, report mergeoutput.Report, decode lid.Decoder) error {
	for _, sinkLID := range report.SinkLIDs {
		deps := report.Dependences[sinkLID]
		if len(deps) == 0 {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s NOM ", decode.Decode(sinkLID)); err != nil {
			return err
		}
		for i, d := range deps {
			if i > 0 {
				if _, err := io.WriteString(w, "|"); err != nil {
					return err
				}
			}
			if err := writeDepField(w, d, decode); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}

func writeDepField(w io.Writer, d dependence.Dependence, decode lid.Decoder) error {
	varName := ""
	if d.VarName != nil {
		varName = *d.VarName
	}
	_, err := fmt.Fprintf(w, "%s:%s:%s|%s", d.Kind, decode.Decode(d.SourceLID), varName, d.AAVar)
	return err
}

// writeEndSentinel writes the terminal "<lid> END program" line that
// closes the dependence stream.
func writeEndSentinel(w io.Writer, finalizeLID lid.LID, decode lid.Decoder) error {
	_, err := fmt.Fprintf(w, "%s END program\n", decode.Decode(finalizeLID))
	return err
}

// writeProfilingTime writes the "<ms> ms\n" statistics line.
func writeProfilingTime(w io.Writer, elapsedMS int64) error {
	_, err := io.WriteString(w, strconv.FormatInt(elapsedMS, 10)+" ms\n")
	return err
}
