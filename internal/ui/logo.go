// GiveBox - Donation Checkout Wizard
// Copyright (C) 2026 Cloud Exit B.V.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package ui

import "fmt"

// LogoSmall prints the GiveBox ASCII logo.
func LogoSmall() {
	fmt.Fprint(Stdout, Cyan)
	fmt.Fprintln(Stdout, `   ____ _           ____`)
	fmt.Fprintln(Stdout, `  / ___(_)_   _____| __ )  _____  __`)
	fmt.Fprintln(Stdout, ` | |  _| \ \ / / _ \  _ \ / _ \ \/ /`)
	fmt.Fprintln(Stdout, ` | |_| | |\ V /  __/ |_) | (_) >  <`)
	fmt.Fprintln(Stdout, `  \____|_| \_/ \___|____/ \___/_/\_\`)
	fmt.Fprint(Stdout, NC)
}

// Logo prints the logo followed by the campaign name and tagline.
func Logo(campaign, tagline string) {
	LogoSmall()
	fmt.Fprintln(Stdout)
	fmt.Fprintf(Stdout, "%sSupporting %s%s\n", Bold, campaign, NC)
	if tagline != "" {
		fmt.Fprintf(Stdout, "%s%s%s\n", Dim, tagline, NC)
	}
}
