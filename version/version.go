/*************************************************************************
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package version

import (
	"fmt"
	"io"
	"time"
)

const (
	MajorVersion = 1
	MinorVersion = 0
	PointVersion = 0

	// ProtocolVersion is the wire version this build speaks; it is not the
	// same number as the package version above.
	ProtocolVersion = 1
)

var BuildDate time.Time = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func PrintVersion(wtr io.Writer) {
	fmt.Fprintf(wtr, "Version:\t%d.%d.%d\n", MajorVersion, MinorVersion, PointVersion)
	fmt.Fprintf(wtr, "Protocol:\t%d\n", ProtocolVersion)
	fmt.Fprintf(wtr, "BuildDate:\t%s\n", BuildDate.Format(`2006-01-02 15:04:05`))
}

func GetVersion() string {
	return fmt.Sprintf("%d.%d.%d", MajorVersion, MinorVersion, PointVersion)
}
