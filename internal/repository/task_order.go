package repository

// OrderExpr builds the ORDER BY expression for a task listing. Status and
// priority sort by their semantic rank rather than lexicographically, so
// "priority desc" yields HIGH, MEDIUM, LOW. Creation order is the tiebreak,
// which keeps repeated listings stable. Returns false when sortBy is absent
// or unknown, in which case store-native order applies.
func OrderExpr(sortBy, sortOrder string) (string, bool) {
	var col string
	switch sortBy {
	case "priority":
		col = "CASE priority WHEN 'LOW' THEN 0 WHEN 'MEDIUM' THEN 1 WHEN 'HIGH' THEN 2 ELSE 3 END"
	case "status":
		col = "CASE status WHEN 'PENDING' THEN 0 WHEN 'IN_PROGRESS' THEN 1 WHEN 'COMPLETED' THEN 2 ELSE 3 END"
	case "dueDate":
		col = "due_date"
	default:
		return "", false
	}

	dir := " ASC"
	if sortOrder == "desc" {
		dir = " DESC"
	}
	return col + dir + ", created_at ASC", true
}
