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

// givebox runs the donation checkout in a terminal.
//
// Usage:
//
//	givebox                           # interactive checkout
//	givebox donate --amount 25 ...    # scripted donation
//	givebox config init               # write the default config
package main

import "github.com/cloud-exit/givebox/cmd"

func main() {
	cmd.Execute()
}
