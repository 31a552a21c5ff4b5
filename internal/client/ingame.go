package client

import "github.com/ghack/client/internal/protocol"

// inGameRules routes steady-state gameplay events. All rules are typed:
// the handler gets the unwrapped body and forwards it to the entity store,
// then to the script hooks when attached. Unknown-id anomalies are logged
// by the store, never fatal.
func inGameRules() []rule {
	return []rule{
		typedRule(protocol.MsgAddEntity, func(c *Client, pl any) {
			add := pl.(*protocol.AddEntity)
			c.store.Add(add.ID, add.Name)
			if c.hooks != nil {
				c.hooks.EntityAdded(add.ID, add.Name)
			}
		}),
		typedRule(protocol.MsgRemoveEntity, func(c *Client, pl any) {
			rm := pl.(*protocol.RemoveEntity)
			c.store.Remove(rm.ID, rm.Name)
			if c.hooks != nil {
				c.hooks.EntityRemoved(rm.ID, rm.Name)
			}
		}),
		typedRule(protocol.MsgUpdateState, func(c *Client, pl any) {
			up := pl.(*protocol.UpdateState)
			c.store.Update(up.ID, up.Key, up.Value)
		}),
		typedRule(protocol.MsgAssignControl, func(c *Client, pl any) {
			ac := pl.(*protocol.AssignControl)
			c.store.AssignControl(ac.ID, ac.Revoked)
		}),
		typedRule(protocol.MsgEntityDeath, func(c *Client, pl any) {
			d := pl.(*protocol.EntityDeath)
			c.store.Death(d.VictimID, d.VictimName, d.KillerID, d.KillerName)
			if c.hooks != nil {
				c.hooks.EntityDeath(d.VictimID, d.VictimName, d.KillerID, d.KillerName)
			}
		}),
		typedRule(protocol.MsgCombatHit, func(c *Client, pl any) {
			h := pl.(*protocol.CombatHit)
			c.store.CombatHit(h.AttackerID, h.AttackerName, h.VictimID, h.VictimName, h.Damage)
			if c.hooks != nil {
				c.hooks.CombatHit(h.AttackerID, h.AttackerName, h.VictimID, h.VictimName, h.Damage)
			}
		}),
	}
}
