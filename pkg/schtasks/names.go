package schtasks

import "strings"

// TaskFolder is the logical folder all tasks created by this system live
// under. The prefix keeps them distinguishable from unrelated scheduled jobs
// and makes bulk listing safe.
const TaskFolder = `\datalys2`

// Qualify prefixes a bare task name with TaskFolder. A name that already
// starts with a backslash is treated as fully qualified and passed through
// unchanged, even when it points outside TaskFolder.
func Qualify(name string) string {
	if strings.HasPrefix(name, `\`) {
		return name
	}
	return TaskFolder + `\` + name
}
