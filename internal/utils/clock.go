package utils

import "time"

// Tashkent is the portal's business time zone (UTC+5, no DST). Order numbers
// roll over at Tashkent midnight.
var Tashkent = time.FixedZone("UZT", 5*3600)
