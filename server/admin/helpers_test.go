package admin

import "strconv"

func idString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
