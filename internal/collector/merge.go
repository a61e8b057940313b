package collector

import "github.com/ozsensors/bom-bridge/internal/models"

// mergeTodayTemps copies forward the previous day-0 temp_min/temp_max into a
// freshly fetched daily payload when the new values are null. The bureau
// reports today's min as null from mid-afternoon, which would otherwise blank
// the value until the next forecast day rolls over. New non-null values
// always win.
func mergeTodayTemps(previous, next models.Payload) {
	prevDays := previous.DataList()
	nextDays := next.DataList()
	if len(prevDays) == 0 || len(nextDays) == 0 {
		return
	}
	oldToday, ok := prevDays[0].(map[string]interface{})
	if !ok {
		return
	}
	newToday, ok := nextDays[0].(map[string]interface{})
	if !ok {
		return
	}
	preserveValue(oldToday, newToday, "temp_min")
	preserveValue(oldToday, newToday, "temp_max")
}

// preserveValue keeps the old value under key when the new map holds null or
// lacks the key entirely.
func preserveValue(old, new map[string]interface{}, key string) {
	if v, ok := new[key]; ok && v != nil {
		return
	}
	if v, ok := old[key]; ok && v != nil {
		new[key] = v
	}
}
