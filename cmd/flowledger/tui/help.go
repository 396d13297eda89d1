// Package tui provides the interactive terminal interface for flowledger.
// This file contains the help page content.
package tui

// helpMarkdown is the help page shown for "?". Rendered through glamour
// with a plain-text fallback.
const helpMarkdown = `# flowledger

Interactive manager for a pipeline throughput and capacity dataset.

## Menu actions

1. **Load Data from CSV** - replace the working set with the dataset file
   (up to 100 records; rows that fail validation are skipped and counted).
2. **Display Records** - table of the working set. Press ` + "`d`" + ` for a
   single record's detail; records with throughput above 50 render in the
   formatted boxed style.
3. **Add New Record** - append a throughput/capacity pair. Both values must
   be non-negative numbers.
4. **Edit a Record** - overwrite both fields of one record by number. The
   display style follows the new throughput.
5. **Delete a Record** - remove one record by number; later records shift
   down.
6. **Save Data to New CSV** - write the working set, header included, to a
   file (empty input saves to the path suggested in the prompt).
7. **Plot Horizontal Bar Chart** - bucket one field into Low (0-20),
   Medium (20-50), and High (50+) counts.
8. **Exit** - quit.

## Keys

- ` + "`up`/`down`" + ` move, ` + "`enter`" + ` run, ` + "`1`-`8`" + ` quick pick
- ` + "`esc`" + ` cancels a prompt, leaves a view, or quits from the menu
- ` + "`r`" + ` reloads after the dataset changed on disk
- ` + "`ctrl+c`" + ` quits from anywhere

Mutations are journaled to the operation journal when enabled; the working
set itself only touches disk on Load and Save.
`

func (m Model) renderHelp() string {
	return m.safeRenderMarkdown(helpMarkdown)
}
