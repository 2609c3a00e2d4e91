package notification

import "projectroom/internal/domain"

// ComputeRecipients decides who gets a persisted notification for one event
// on project. Anyone currently in the project room (active) already sees the
// event live and is skipped, as is the sender.
//
//   - every participant, under the role on their user row
//   - the project's client, or its vendor when there is no client, unless the
//     sender is on the client side or either of them is active
//   - every admin
//
// Recipients are unique by (kind, id) and ordered participants, client side,
// admins. A participant who is also an admin is matched against sender and
// active as the admin they are.
func ComputeRecipients(
	project *domain.Project,
	sender domain.Actor,
	active domain.ActorSet,
	participants []domain.Actor,
	adminIDs []int64,
) []domain.Recipient {
	seen := make(map[domain.Recipient]struct{})
	var out []domain.Recipient

	add := func(actor domain.Actor) {
		if actor == sender || active.Has(actor) {
			return
		}
		r := domain.RecipientOf(actor)
		key := domain.Recipient{Kind: r.Kind, ID: r.ID}
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}

	for _, participant := range participants {
		add(participant)
	}

	if !sender.Role.IsClientSide() {
		var clientActor, vendorActor *domain.Actor
		if project.ClientID != nil {
			clientActor = &domain.Actor{ID: *project.ClientID, Role: domain.RoleClient}
		}
		if project.ClientVendorID != nil {
			vendorActor = &domain.Actor{ID: *project.ClientVendorID, Role: domain.RoleClientVendor}
		}

		clientSideActive := (clientActor != nil && active.Has(*clientActor)) ||
			(vendorActor != nil && active.Has(*vendorActor))

		if !clientSideActive {
			// One row per project: the client when there is one, else the vendor.
			switch {
			case clientActor != nil:
				add(*clientActor)
			case vendorActor != nil:
				add(*vendorActor)
			}
		}
	}

	for _, id := range adminIDs {
		add(domain.Actor{ID: id, Role: domain.RoleAdmin})
	}

	return out
}
