package sqlinline

const QSelectSetting = `--sql a702dd42-da7e-4d08-8f46-75ce3d5e0307
select value
from app_settings
where key = $1;
`

const QUpsertSetting = `--sql ccde2de3-93a0-4a03-9cdf-ff2ecfce00d2
insert into app_settings (key, value, updated_at)
values ($1, $2, now())
on conflict (key) do update
set value = excluded.value, updated_at = now();
`
