package accounting

// AppVersion is the factoryledger version.
const AppVersion = "0.1.0"
