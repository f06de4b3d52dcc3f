package defs

import "github.com/bwmarrin/discordgo"

var PunishPropose = &discordgo.ApplicationCommand{
	Name:        "punish-sync",
	Description: "Propose a punishment to the other servers in the network",
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "处罚同步",
		discordgo.ChineseTW: "處罰同步",
	},
	DescriptionLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "向网络中的其他服务器发起处罚提案",
		discordgo.ChineseTW: "向網絡中的其他伺服器發起處罰提案",
	},
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "要处罚的用户",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "kind",
			Description: "处罚类型",
			Required:    true,
			Choices: []*discordgo.ApplicationCommandOptionChoice{
				{Name: "禁言", Value: "timeout"},
				{Name: "封禁", Value: "ban"},
				{Name: "警告", Value: "warn"},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "reason",
			Description: "处罚原因",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "duration",
			Description: "处罚时长，如 30m、12h、7d，留空为永久",
			Required:    false,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "evidence",
			Description: "作为证据的消息链接，多个链接请用空格分开",
			Required:    false,
		},
	},
}

var PunishRevoke = &discordgo.ApplicationCommand{
	Name:        "punish-revoke",
	Description: "Revoke a punishment on every server it reached",
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "处罚撤销",
		discordgo.ChineseTW: "處罰撤銷",
	},
	DescriptionLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "在所有已生效的服务器上撤销一条处罚",
		discordgo.ChineseTW: "在所有已生效的伺服器上撤銷一條處罰",
	},
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "punishment_id",
			Description: "处罚 ID",
			Required:    true,
		},
	},
}

var PunishRetry = &discordgo.ApplicationCommand{
	Name:        "punish-retry",
	Description: "Retry a confirmed punishment whose execution failed",
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "处罚重试",
		discordgo.ChineseTW: "處罰重試",
	},
	DescriptionLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "重试一条已确认但执行失败的处罚",
		discordgo.ChineseTW: "重試一條已確認但執行失敗的處罰",
	},
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "punishment_id",
			Description: "处罚 ID",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "guild_id",
			Description: "执行失败的服务器 ID，留空则为当前服务器",
			Required:    false,
		},
	},
}

var PunishQuery = &discordgo.ApplicationCommand{
	Name:        "punish-status",
	Description: "Show a punishment record and its resolution history",
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "处罚查询",
		discordgo.ChineseTW: "處罰查詢",
	},
	DescriptionLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "查看处罚记录及其处理历史",
		discordgo.ChineseTW: "查看處罰記錄及其處理歷史",
	},
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "punishment_id",
			Description: "处罚 ID",
			Required:    true,
		},
	},
}
