package defs

import "github.com/bwmarrin/discordgo"

var manageAdminPerm = int64(discordgo.PermissionManageServer)

var SyncManage = &discordgo.ApplicationCommand{
	Name:        "sync-manage",
	Description: "Manage the cross-server sync network",
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "同步管理",
		discordgo.ChineseTW: "同步管理",
	},
	DescriptionLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "管理跨服务器同步网络",
		discordgo.ChineseTW: "管理跨伺服器同步網絡",
	},
	DefaultMemberPermissions: &manageAdminPerm,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "add-server",
			Description: "将当前服务器加入同步网络",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "name",
					Description: "服务器的显示名称",
					Required:    true,
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "remove-server",
			Description: "将服务器移出同步网络并取消其未决确认",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "guild_id",
					Description: "要移除的服务器 ID，留空则为当前服务器",
					Required:    false,
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "add-role",
			Description: "为当前服务器登记一个同步身份组",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "label",
					Description: "身份组的共享标签",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionRole,
					Name:        "role",
					Description: "该标签在本服务器对应的身份组",
					Required:    true,
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "punishment-sync",
			Description: "开启或关闭本服务器的处罚同步",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "enabled",
					Description: "是否接收其他服务器的处罚提案",
					Required:    true,
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "set-channels",
			Description: "设置处罚公示与确认频道",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionChannel,
					Name:        "announce",
					Description: "处罚结果公示频道",
					Required:    false,
				},
				{
					Type:        discordgo.ApplicationCommandOptionChannel,
					Name:        "confirm",
					Description: "处罚确认请求频道",
					Required:    false,
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "set-warned-role",
			Description: "设置警告处罚使用的身份组",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionRole,
					Name:        "role",
					Description: "收到警告处罚时授予的身份组",
					Required:    true,
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "list",
			Description: "查看同步网络中的服务器与身份组映射",
		},
	},
}

var RoleSync = &discordgo.ApplicationCommand{
	Name:        "sync-roles",
	Description: "Sync a member's mapped roles to the other servers",
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "身份组同步",
		discordgo.ChineseTW: "身份組同步",
	},
	DescriptionLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "将成员的映射身份组同步到其他服务器",
		discordgo.ChineseTW: "將成員的映射身份組同步到其他伺服器",
	},
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "要同步的成员",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "labels",
			Description: "要同步的标签，多个用空格分开；留空则同步该成员持有的全部映射身份组",
			Required:    false,
		},
	},
}

var RoleTransfer = &discordgo.ApplicationCommand{
	Name:        "sync-transfer",
	Description: "Move a member from one mapped role to another across servers",
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "身份组转移",
		discordgo.ChineseTW: "身份組轉移",
	},
	DescriptionLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "跨服务器将成员从一个映射身份组转移到另一个",
		discordgo.ChineseTW: "跨伺服器將成員從一個映射身份組轉移到另一個",
	},
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "要转移的成员",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "old_label",
			Description: "原身份组标签",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "new_label",
			Description: "新身份组标签",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Name:        "remove_old",
			Description: "是否同时移除原身份组，默认移除",
			Required:    false,
		},
	},
}
