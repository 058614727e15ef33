// SPDX-FileCopyrightText: 2025 The macrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package hostnet

import (
	"errors"
	"fmt"

	"github.com/vishvananda/netlink"
)

// linkAPI is the part of the host's link management the manager uses.
type linkAPI interface {
	LinkByName(name string) (netlink.Link, error)
	LinkAdd(link netlink.Link) error
	LinkDel(link netlink.Link) error
	LinkSetUp(link netlink.Link) error
	LinkSetMaster(link netlink.Link, master netlink.Link) error
}

// hostLinks is the [linkAPI] backed by the host's netlink interface.
type hostLinks struct{}

func (hostLinks) LinkByName(name string) (netlink.Link, error) {
	link, err := netlink.LinkByName(name)
	if err != nil {
		var notFound netlink.LinkNotFoundError
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: %s", ErrLinkNotFound, name)
		}

		return nil, err
	}

	return link, nil
}

func (hostLinks) LinkAdd(link netlink.Link) error {
	return netlink.LinkAdd(link)
}

func (hostLinks) LinkDel(link netlink.Link) error {
	return netlink.LinkDel(link)
}

func (hostLinks) LinkSetUp(link netlink.Link) error {
	return netlink.LinkSetUp(link)
}

func (hostLinks) LinkSetMaster(link netlink.Link, master netlink.Link) error {
	return netlink.LinkSetMaster(link, master)
}
