package report

// Indonesian display labels. Unknown codes are shown as-is.

var actionLabels = map[string]string{
	"LOGIN_SUCCESS":            "Login Berhasil",
	"LOGIN_FAILED":             "Login Gagal",
	"LOGOUT":                   "Logout",
	"PASSWORD_CHANGED":         "Password Diubah",
	"PASSWORD_RESET":           "Password Direset",
	"PASSWORD_RESET_REQUESTED": "Permintaan Reset Password",
	"PASSWORD_EXPIRED":         "Password Kedaluwarsa",
	"ACCOUNT_LOCKED":           "Akun Dikunci",
	"ACCOUNT_UNLOCKED":         "Akun Dibuka",
	"USER_CREATED":             "Pengguna Dibuat",
	"USER_UPDATED":             "Pengguna Diperbarui",
	"USER_ACTIVATED":           "Pengguna Diaktifkan",
	"USER_DEACTIVATED":         "Pengguna Dinonaktifkan",
	"ROLE_CHANGED":             "Peran Diubah",
	"PERMISSION_CHANGED":       "Hak Akses Diubah",
	"PROFILE_UPDATED":          "Profil Diperbarui",
	"SESSION_TERMINATED":       "Sesi Dihentikan",
	"NEW_DEVICE_LOGIN":         "Login dari Perangkat Baru",
	"SUSPICIOUS_ACTIVITY":      "Aktivitas Mencurigakan",
}

var failureReasonLabels = map[string]string{
	"INVALID_PASSWORD":    "Password Salah",
	"INVALID_CREDENTIALS": "Kredensial Tidak Valid",
	"USER_NOT_FOUND":      "Pengguna Tidak Ditemukan",
	"ACCOUNT_LOCKED":      "Akun Terkunci",
	"ACCOUNT_INACTIVE":    "Akun Tidak Aktif",
	"PASSWORD_EXPIRED":    "Password Kedaluwarsa",
	"TOO_MANY_ATTEMPTS":   "Terlalu Banyak Percobaan",
}

var fieldLabels = map[string]string{
	"name":           "Nama",
	"email":          "Email",
	"username":       "Nama Pengguna",
	"phone":          "Nomor Telepon",
	"role":           "Peran",
	"branchId":       "Cabang",
	"supportGroupId": "Grup Dukungan",
	"isActive":       "Status Aktif",
	"avatar":         "Foto Profil",
}

var logoutReasonLabels = map[string]string{
	"USER_LOGOUT":      "Logout Manual",
	"SESSION_EXPIRED":  "Sesi Kedaluwarsa",
	"IDLE_TIMEOUT":     "Tidak Aktif Terlalu Lama",
	"FORCED_LOGOUT":    "Dipaksa Keluar",
	"ACCOUNT_LOCKED":   "Akun Dikunci",
	"PASSWORD_CHANGED": "Password Diubah",
}

var roleLabels = map[string]string{
	"ADMIN":            "Administrator",
	"MANAGER":          "Manajer",
	"TECHNICIAN":       "Teknisi",
	"AGENT":            "Agen",
	"USER":             "Pengguna",
	"AUDITOR":          "Auditor",
	"SECURITY_ANALYST": "Analis Keamanan",
}

var deviceTypeLabels = map[string]string{
	"desktop": "Desktop",
	"mobile":  "Mobile",
	"tablet":  "Tablet",
}

var monthNames = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// passwordActions are the audit actions reported by PASSWORD_CHANGES
var passwordActions = []string{
	"PASSWORD_CHANGED",
	"PASSWORD_RESET",
	"PASSWORD_RESET_REQUESTED",
	"PASSWORD_EXPIRED",
}

// defaultSecurityActions are reported by SECURITY_EVENTS unless the request
// names its own action set
var defaultSecurityActions = []string{
	"ACCOUNT_LOCKED",
	"ACCOUNT_UNLOCKED",
	"ROLE_CHANGED",
	"PERMISSION_CHANGED",
	"USER_ACTIVATED",
	"USER_DEACTIVATED",
	"SESSION_TERMINATED",
	"NEW_DEVICE_LOGIN",
	"SUSPICIOUS_ACTIVITY",
}

func lookup(table map[string]string, code string) string {
	if label, ok := table[code]; ok {
		return label
	}
	return code
}

// ActionLabel returns the display label of an audit action
func ActionLabel(code string) string { return lookup(actionLabels, code) }

// FailureReasonLabel returns the display label of a login failure reason
func FailureReasonLabel(code string) string { return lookup(failureReasonLabels, code) }

// FieldLabel returns the display label of a profile field
func FieldLabel(code string) string { return lookup(fieldLabels, code) }

// LogoutReasonLabel returns the display label of a logout reason
func LogoutReasonLabel(code string) string { return lookup(logoutReasonLabels, code) }

// RoleLabel returns the display label of a user role
func RoleLabel(code string) string { return lookup(roleLabels, code) }
