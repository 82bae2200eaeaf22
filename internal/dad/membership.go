package dad

import (
	"bufio"
	"os"
	"strconv"
	"strings"
)

// procNetIGMP6Path is the kernel's IPv6 multicast group membership table,
// overridable in tests.
var procNetIGMP6Path = "/proc/net/igmp6"

// allNodesHex is ff02::1 written as the 32 hex digits /proc/net/igmp6 uses.
const allNodesHex = "ff020000000000000000000000000001"

// allNodesMembershipJoined reports whether ifIndex already holds membership
// in the all-nodes link-local multicast group, by scanning
// /proc/net/igmp6. Each line there has the form:
//
//	<ifindex> <device> <32-hex-digit group> <users> <refcnt> <flags>
func allNodesMembershipJoined(ifIndex int) (bool, error) {
	f, err := os.Open(procNetIGMP6Path)
	if err != nil {
		return false, TransportError{Op: "read multicast membership table", Err: err}
	}
	defer f.Close()

	want := strconv.Itoa(ifIndex)

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			continue
		}
		if fields[0] == want && strings.EqualFold(fields[2], allNodesHex) {
			return true, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return false, TransportError{Op: "read multicast membership table", Err: err}
	}
	return false, nil
}
