package attendance

const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusLate    = "late"
	StatusLeave   = "leave"
	StatusHoliday = "holiday"
)

var Statuses = []string{StatusPresent, StatusAbsent, StatusLate, StatusLeave, StatusHoliday}

func ValidStatus(status string) bool {
	for _, candidate := range Statuses {
		if status == candidate {
			return true
		}
	}
	return false
}
