package db

// timeLayout is how timestamps are stored. All stored times are UTC.
const timeLayout = "2006-01-02 15:04:05"

// modelSeparator joins model names in the daily_usage.models column.
const modelSeparator = ","
