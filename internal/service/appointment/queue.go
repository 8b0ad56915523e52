package appointment

import (
	"sort"

	"github.com/jwalitptl/hospital-ops/internal/model"
)

// ProjectQueue builds the per-department queues for one day. Cancelled and
// no-show appointments are left out. Within a department entries are
// stably ordered by start time and numbered from 1; the estimated wait of an
// entry is the summed duration of the entries before it. Departments are
// ordered by name.
func ProjectQueue(date string, appointments []*model.Appointment) []model.DepartmentQueue {
	byDept := make(map[string][]*model.Appointment)
	for _, a := range appointments {
		if a.Date != date || !a.Status.Queued() {
			continue
		}
		byDept[a.Department] = append(byDept[a.Department], a)
	}

	departments := make([]string, 0, len(byDept))
	for dept := range byDept {
		departments = append(departments, dept)
	}
	sort.Strings(departments)

	queues := make([]model.DepartmentQueue, 0, len(departments))
	for _, dept := range departments {
		appts := byDept[dept]
		sort.SliceStable(appts, func(i, j int) bool {
			return appts[i].StartTime < appts[j].StartTime
		})

		entries := make([]model.QueueEntry, len(appts))
		wait := 0
		for i, a := range appts {
			entries[i] = model.QueueEntry{
				TokenNumber:          i + 1,
				Appointment:          a,
				EstimatedWaitMinutes: wait,
			}
			wait += a.DurationMinutes()
		}
		queues = append(queues, model.DepartmentQueue{Department: dept, Entries: entries})
	}
	return queues
}
