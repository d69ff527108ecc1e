package report

import "strings"

// Column is one entry of a report's column table
type Column struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Width float64 `json:"width"`
}

// TypeInfo describes a report kind for API clients
type TypeInfo struct {
	Type    ReportType `json:"type"`
	Title   string     `json:"title"`
	Columns []Column   `json:"columns"`
}

var titles = map[ReportType]string{
	LoginActivity:   "Laporan Aktivitas Login",
	FailedLogins:    "Laporan Login Gagal",
	PasswordChanges: "Laporan Perubahan Password",
	UserActivity:    "Laporan Aktivitas Pengguna",
	SecurityEvents:  "Laporan Event Keamanan",
	ProfileChanges:  "Laporan Perubahan Profil",
	SessionHistory:  "Laporan Riwayat Sesi",
}

var columnTables = map[ReportType][]Column{
	LoginActivity: {
		{Key: "attempted_at", Label: "Waktu", Width: 20},
		{Key: "email", Label: "Email", Width: 30},
		{Key: "status", Label: "Status", Width: 10},
		{Key: "failure_reason", Label: "Alasan Gagal", Width: 25},
		{Key: "ip_address", Label: "Alamat IP", Width: 16},
		{Key: "browser", Label: "Browser", Width: 12},
		{Key: "lock_triggered", Label: "Akun Dikunci", Width: 13},
	},
	FailedLogins: {
		{Key: "attempted_at", Label: "Waktu", Width: 20},
		{Key: "email", Label: "Email", Width: 30},
		{Key: "failure_reason", Label: "Alasan Gagal", Width: 25},
		{Key: "ip_address", Label: "Alamat IP", Width: 16},
		{Key: "browser", Label: "Browser", Width: 12},
		{Key: "user_agent", Label: "User Agent", Width: 40},
		{Key: "lock_triggered", Label: "Akun Dikunci", Width: 13},
	},
	PasswordChanges: {
		{Key: "created_at", Label: "Waktu", Width: 20},
		{Key: "user_name", Label: "Nama Pengguna", Width: 25},
		{Key: "user_email", Label: "Email", Width: 30},
		{Key: "action", Label: "Aksi", Width: 28},
		{Key: "ip_address", Label: "Alamat IP", Width: 16},
		{Key: "details", Label: "Detail", Width: 40},
	},
	UserActivity: {
		{Key: "name", Label: "Nama", Width: 25},
		{Key: "email", Label: "Email", Width: 30},
		{Key: "role", Label: "Peran", Width: 16},
		{Key: "status", Label: "Status", Width: 10},
		{Key: "last_login_at", Label: "Login Terakhir", Width: 20},
		{Key: "total_actions", Label: "Total Aksi", Width: 12},
		{Key: "login_attempts", Label: "Percobaan Login", Width: 16},
		{Key: "failed_logins", Label: "Login Gagal", Width: 12},
	},
	SecurityEvents: {
		{Key: "created_at", Label: "Waktu", Width: 20},
		{Key: "user_name", Label: "Nama Pengguna", Width: 25},
		{Key: "user_email", Label: "Email", Width: 30},
		{Key: "action", Label: "Event", Width: 28},
		{Key: "ip_address", Label: "Alamat IP", Width: 16},
		{Key: "details", Label: "Detail", Width: 40},
	},
	ProfileChanges: {
		{Key: "created_at", Label: "Waktu", Width: 20},
		{Key: "user_name", Label: "Nama Pengguna", Width: 25},
		{Key: "user_email", Label: "Email", Width: 30},
		{Key: "field", Label: "Field", Width: 18},
		{Key: "old_value", Label: "Nilai Lama", Width: 25},
		{Key: "new_value", Label: "Nilai Baru", Width: 25},
		{Key: "changed_by", Label: "Diubah Oleh", Width: 25},
		{Key: "change_type", Label: "Jenis Perubahan", Width: 16},
	},
	SessionHistory: {
		{Key: "login_at", Label: "Waktu Login", Width: 20},
		{Key: "logout_at", Label: "Waktu Logout", Width: 20},
		{Key: "user_name", Label: "Nama Pengguna", Width: 25},
		{Key: "user_email", Label: "Email", Width: 30},
		{Key: "ip_address", Label: "Alamat IP", Width: 16},
		{Key: "device", Label: "Perangkat", Width: 20},
		{Key: "duration", Label: "Durasi", Width: 14},
		{Key: "logout_reason", Label: "Alasan Logout", Width: 22},
		{Key: "status", Label: "Status", Width: 10},
		{Key: "new_device", Label: "Perangkat Baru", Width: 14},
	},
}

// Columns returns the column table of t, or nil for an unknown type
func Columns(t ReportType) []Column {
	cols := columnTables[t]
	if cols == nil {
		return nil
	}
	out := make([]Column, len(cols))
	copy(out, cols)
	return out
}

// Title returns the display title of t
func Title(t ReportType) string {
	if title, ok := titles[t]; ok {
		return title
	}
	return string(t)
}

// Slug returns the file-name form of t, e.g. "login-activity"
func Slug(t ReportType) string {
	return strings.ReplaceAll(strings.ToLower(string(t)), "_", "-")
}

// Types describes every report kind
func Types() []TypeInfo {
	infos := make([]TypeInfo, 0, len(AllTypes))
	for _, t := range AllTypes {
		infos = append(infos, TypeInfo{Type: t, Title: Title(t), Columns: Columns(t)})
	}
	return infos
}
